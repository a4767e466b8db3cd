package domain

import "errors"

// Failure taxonomy. Callers branch on these with errors.Is instead of
// matching error strings; adapters wrap transport failures with
// ErrSourceUnavailable so the cause stays inspectable.
var (
	// ErrSourceUnavailable means the underlying source could not answer
	// (network, auth, unknown pair). Never retried by this package.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrNotSupported means the instrument has no such mechanism at the
	// source, e.g. funding rates on a spot pair.
	ErrNotSupported = errors.New("not supported by instrument")

	// ErrInvalidOrder means the caller supplied a malformed order request.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrInvalidParameter means the caller supplied a malformed argument.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrEmptyBook means the order book had no bid or no ask, so depth
	// analytics cannot run.
	ErrEmptyBook = errors.New("empty order book")

	// ErrInsufficientLiquidity means the book was exhausted before the
	// requested notional could be filled.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrUnrecognizedSymbol means a native pair spelling could not be
	// parsed into a canonical symbol.
	ErrUnrecognizedSymbol = errors.New("unrecognized symbol format")

	// ErrOrderNotFilled means the order backing a position lookup is not
	// closed yet.
	ErrOrderNotFilled = errors.New("order not filled")

	// ErrPositionNotFound means no position at the source matches the
	// order's pair and side.
	ErrPositionNotFound = errors.New("position not found")

	// ErrNoLiquiditySources means every queried source failed, so there
	// is nothing to aggregate.
	ErrNoLiquiditySources = errors.New("no liquidity sources")
)
