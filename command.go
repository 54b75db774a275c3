package ftp

import (
	"fmt"
	"strconv"
	"strings"
)

// Command renders a single FTP wire command. Every constructor in this file
// returns a Command whose render() produces one line terminated by "\r\n" —
// callers never build command strings by hand. Arguments are passed through
// unvalidated, so the line contains no other CR or LF only as long as the
// arguments contain none.
type Command struct {
	verb string
	args []string
}

func (c Command) render() string {
	if len(c.args) == 0 {
		return c.verb + "\r\n"
	}
	return c.verb + " " + strings.Join(c.args, " ") + "\r\n"
}

// Verb returns the command's wire verb, e.g. "RETR". Used for error
// reporting so BadCommandError/BadParameterError can name the command that
// was rejected without re-parsing the rendered line.
func (c Command) Verb() string { return c.verb }

func cmd(verb string, args ...string) Command { return Command{verb: verb, args: args} }

func optArg(args []string, opt *string) []string {
	if opt == nil {
		return args
	}
	return append(args, *opt)
}

// Commands with no argument.
func CmdAbor() Command { return cmd("ABOR") }
func CmdAuth() Command { return cmd("AUTH", "TLS") }
func CmdCcc() Command  { return cmd("CCC") }
func CmdCdup() Command { return cmd("CDUP") }
func CmdFeat() Command { return cmd("FEAT") }
func CmdNoop() Command { return cmd("NOOP") }
func CmdPasv() Command { return cmd("PASV") }
func CmdEpsv() Command { return cmd("EPSV") }
func CmdPwd() Command  { return cmd("PWD") }
func CmdQuit() Command { return cmd("QUIT") }
func CmdSyst() Command { return cmd("SYST") }

// Commands with a mandatory path/string argument.
func CmdAppe(path string) Command { return cmd("APPE", path) }
func CmdCwd(path string) Command  { return cmd("CWD", path) }
func CmdDele(path string) Command { return cmd("DELE", path) }
func CmdMdtm(path string) Command { return cmd("MDTM", path) }
func CmdMkd(path string) Command  { return cmd("MKD", path) }
func CmdRnfr(path string) Command { return cmd("RNFR", path) }
func CmdRnto(path string) Command { return cmd("RNTO", path) }
func CmdRetr(path string) Command { return cmd("RETR", path) }
func CmdRmd(path string) Command  { return cmd("RMD", path) }
func CmdSize(path string) Command { return cmd("SIZE", path) }
func CmdStor(path string) Command { return cmd("STOR", path) }
func CmdUser(name string) Command { return cmd("USER", name) }
func CmdPass(secret string) Command { return cmd("PASS", secret) }
func CmdSite(raw string) Command  { return cmd("SITE", raw) }

// Commands with an optional path argument.
func CmdList(path *string) Command { return Command{verb: "LIST", args: optArg(nil, path)} }
func CmdNlst(path *string) Command { return Command{verb: "NLST", args: optArg(nil, path)} }
func CmdMlsd(path *string) Command { return Command{verb: "MLSD", args: optArg(nil, path)} }
func CmdMlst(path *string) Command { return Command{verb: "MLST", args: optArg(nil, path)} }
func CmdStat(path *string) Command { return Command{verb: "STAT", args: optArg(nil, path)} }
func CmdLang(tag *string) Command  { return Command{verb: "LANG", args: optArg(nil, tag)} }

// Commands with numeric arguments.
func CmdPbsz(size int64) Command { return cmd("PBSZ", strconv.FormatInt(size, 10)) }
func CmdRest(offset int64) Command { return cmd("REST", strconv.FormatInt(offset, 10)) }

// Commands that take the rendered form of another type.
func CmdType(t FileType) Command           { return cmd("TYPE", t.render()) }
func CmdProt(level ProtectionLevel) Command { return cmd("PROT", level.render()) }
func CmdPort(hostPortSpec string) Command  { return cmd("PORT", hostPortSpec) }
func CmdEprt(spec string) Command          { return cmd("EPRT", spec) }

// CmdOpts renders OPTS <name>[ <value>]. value is nil for a bare option
// name (e.g. "OPTS UTF8 ON" vs. a feature with no value).
func CmdOpts(name string, value *string) Command {
	return Command{verb: "OPTS", args: optArg([]string{name}, value)}
}

////////////////////////////////////////////////////////////////////////////

// FormatControl is the text format control argument of the TYPE command
// when the file type is Ascii or Ebcdic.
type FormatControl int

const (
	FormatDefault FormatControl = iota
	FormatNonPrint
	FormatTelnet
	FormatASA
)

func (f FormatControl) render() string {
	switch f {
	case FormatTelnet:
		return "T"
	case FormatASA:
		return "C"
	default: // FormatDefault, FormatNonPrint
		return "N"
	}
}

type fileTypeKind int

const (
	fileTypeAscii fileTypeKind = iota
	fileTypeEbcdic
	fileTypeImage
	fileTypeBinary
	fileTypeLocal
)

// FileType is the argument of the TYPE command. Image and Binary render
// identically ("I") — they are wire-equivalent, kept distinct only because
// callers may want to say which one they meant.
type FileType struct {
	kind   fileTypeKind
	format FormatControl
	bits   uint8
}

var (
	TypeImage  = FileType{kind: fileTypeImage}
	TypeBinary = FileType{kind: fileTypeBinary}
)

func TypeAscii(fc FormatControl) FileType  { return FileType{kind: fileTypeAscii, format: fc} }
func TypeEbcdic(fc FormatControl) FileType { return FileType{kind: fileTypeEbcdic, format: fc} }
func TypeLocal(bits uint8) FileType        { return FileType{kind: fileTypeLocal, bits: bits} }

func (t FileType) render() string {
	switch t.kind {
	case fileTypeAscii:
		return "A " + t.format.render()
	case fileTypeEbcdic:
		return "E " + t.format.render()
	case fileTypeLocal:
		return fmt.Sprintf("L %d", t.bits)
	default: // Image, Binary
		return "I"
	}
}

// ProtectionLevel is the argument of the PROT command.
type ProtectionLevel int

const (
	ProtectionClear ProtectionLevel = iota
	ProtectionPrivate
)

func (p ProtectionLevel) render() string {
	if p == ProtectionPrivate {
		return "P"
	}
	return "C"
}

// Mode selects how the data-channel coordinator opens the secondary
// connection: the client connecting out (Passive) or the server connecting
// in (Active). Passive is the zero value and the engine's initial mode.
type Mode int

const (
	ModePassive Mode = iota
	ModeActive
)
