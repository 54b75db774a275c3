package ftp

import "strconv"

// Status is a three-digit FTP reply code. The constants below name the codes
// this client knows the meaning of; any other code a server sends is never
// rejected — it round-trips losslessly as a plain Status(code).
type Status int

// Named reply codes used by the control engine's expected-status sets.
// Values match the numeric wire codes exactly, so Status(code) always
// recovers the right constant without a table lookup.
const (
	AboutToSend              Status = 150 // 1yz preliminary positive
	AlreadyOpen               Status = 125
	CommandOk                Status = 200 // 2yz completion
	System                   Status = 211
	Ready                    Status = 220
	Closing                  Status = 221
	ClosingDataConnection    Status = 226
	PassiveMode              Status = 227
	ExtendedPassiveMode      Status = 229
	LoggedIn                 Status = 230
	AuthOk                   Status = 234
	RequestedFileActionOk    Status = 250
	PathCreated              Status = 257
	NeedPassword             Status = 331 // 3yz intermediate
	RequestFilePending       Status = 350
	RequestFileActionIgnored Status = 450 // 4yz transient negative
	TransferAborted          Status = 426
	BadCommand               Status = 500 // 5yz permanent negative
	BadArguments             Status = 501
	NotImplemented           Status = 502
	BadSequence              Status = 503
	NotImplementedParameter  Status = 504
	FileUnavailable          Status = 550
	File                     Status = 213
	Directory                Status = 212
	ExceededStorage          Status = 552
)

// Family is the first-digit classification of a Status: 1 through 5.
type Family int

const (
	FamilyPreliminary Family = 1
	FamilyCompletion  Family = 2
	FamilyIntermediate Family = 3
	FamilyTransient    Family = 4
	FamilyPermanent    Family = 5
)

// Family derives the reply's first-digit classification directly from the
// numeric code — no table lookup required, per spec.
func (s Status) Family() Family {
	return Family(int(s) / 100)
}

func (s Status) Is1xx() bool { return s.Family() == FamilyPreliminary }
func (s Status) Is2xx() bool { return s.Family() == FamilyCompletion }
func (s Status) Is3xx() bool { return s.Family() == FamilyIntermediate }
func (s Status) Is4xx() bool { return s.Family() == FamilyTransient }
func (s Status) Is5xx() bool { return s.Family() == FamilyPermanent }

// Code returns the underlying three-digit wire code.
func (s Status) Code() int { return int(s) }

func (s Status) String() string {
	return strconv.Itoa(int(s))
}

// statusIn reports whether code matches any of the expected statuses.
func statusIn(code Status, expected []Status) bool {
	for _, e := range expected {
		if e == code {
			return true
		}
	}
	return false
}
