package instruction

// Result is a typed instruction result code. Zero is success; negative codes
// are rejections raised before any computation on pool state (the request
// itself is unacceptable); positive codes are failures while processing.
// Either way a non-success result leaves zero persisted effect.
type Result int

const (
	ResSUCCESS Result = 0

	// Rejections (negative): request refused before any computation.
	ResMALFORMED       Result = -101
	ResCONFIG_MISMATCH Result = -102
	ResUNAUTHORIZED    Result = -103

	// Processing failures (positive).
	ResINSUFFICIENT_FUNDS  Result = 101
	ResARITHMETIC_OVERFLOW Result = 102
	ResDIVIDE_BY_ZERO      Result = 103
	ResUNDERFLOW           Result = 104
	ResSLIPPAGE_EXCEEDED   Result = 105
	ResTRANSFER_FAILURE    Result = 106
	ResCONVERSION_ERROR    Result = 107

	// ResINTERNAL covers entry codec faults and other impossible states.
	ResINTERNAL Result = 199
)

var resultNames = map[Result]string{
	ResSUCCESS:             "resSUCCESS",
	ResMALFORMED:           "resMALFORMED",
	ResCONFIG_MISMATCH:     "resCONFIG_MISMATCH",
	ResUNAUTHORIZED:        "resUNAUTHORIZED",
	ResINSUFFICIENT_FUNDS:  "resINSUFFICIENT_FUNDS",
	ResARITHMETIC_OVERFLOW: "resARITHMETIC_OVERFLOW",
	ResDIVIDE_BY_ZERO:      "resDIVIDE_BY_ZERO",
	ResUNDERFLOW:           "resUNDERFLOW",
	ResSLIPPAGE_EXCEEDED:   "resSLIPPAGE_EXCEEDED",
	ResTRANSFER_FAILURE:    "resTRANSFER_FAILURE",
	ResCONVERSION_ERROR:    "resCONVERSION_ERROR",
	ResINTERNAL:            "resINTERNAL",
}

// String returns the canonical result code name.
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "resUNKNOWN"
}

// IsSuccess reports whether the instruction was applied.
func (r Result) IsSuccess() bool { return r == ResSUCCESS }

// IsRejection reports whether the request was refused before processing.
func (r Result) IsRejection() bool { return r < 0 }
