package errcode

type Code string

const (
	NotFound    Code = "NOT_FOUND"
	BadRequest  Code = "BAD_REQUEST"
	Unavailable Code = "MARKET_DATA_UNAVAILABLE"
	Internal    Code = "INTERNAL_ERROR"
)
