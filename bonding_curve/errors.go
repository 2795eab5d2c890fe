package bonding_curve

import "errors"

// Input validation errors. Recoverable: the caller may retry with adjusted
// parameters.
var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrSlippageExceeded = errors.New("slippage tolerance exceeded")
	ErrBelowMinimumBuy  = errors.New("below minimum buy amount")
	ErrAboveMaximumBuy  = errors.New("above maximum buy amount")
	ErrInvalidMetadata  = errors.New("invalid token metadata")
)

// State errors. Terminal for the operation but not for the curve.
var (
	ErrPlatformPaused            = errors.New("platform is paused")
	ErrCurveComplete             = errors.New("bonding curve is complete")
	ErrAlreadyMigrated           = errors.New("token already migrated")
	ErrGraduationThresholdNotMet = errors.New("graduation threshold not met")
)

// Capacity errors.
var (
	ErrInsufficientReserves     = errors.New("insufficient token reserves")
	ErrInsufficientCurveBalance = errors.New("insufficient curve SOL balance")
	ErrInsufficientTokenBalance = errors.New("insufficient token balance")
	ErrInsufficientFunds        = errors.New("insufficient funds")
)

// Configuration and authorization errors.
var (
	ErrInvalidFeeRate         = errors.New("invalid fee rate")
	ErrInvalidReserves        = errors.New("invalid initial reserves")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrLaunchExists           = errors.New("launch already exists")
	ErrLaunchNotFound         = errors.New("launch not found")
	ErrPlatformNotInitialized = errors.New("platform not initialized")
	ErrPlatformInitialized    = errors.New("platform already initialized")
)
