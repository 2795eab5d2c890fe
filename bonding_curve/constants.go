package bonding_curve

const (
	SolDecimals   = 9
	TokenDecimals = 6

	LamportsPerSol = 1_000_000_000

	// DefaultGraduationThreshold is the real SOL reserve level at which a
	// curve stops trading and becomes eligible for migration: 85 SOL.
	DefaultGraduationThreshold = 85_000_000_000

	DefaultVirtualSolReserves   = 30_000_000_000
	DefaultVirtualTokenReserves = 1_073_000_000_000_000
	DefaultInitialTokenSupply   = 793_100_000_000_000

	DefaultFeeBasisPoints = 100

	MaxNameLen   = 32
	MaxSymbolLen = 10
	MaxURILen    = 200
	MaxSocialLen = 100
)
