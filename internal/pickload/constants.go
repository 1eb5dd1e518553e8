package pickload

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	memberHeader         = "X-Member-Id"
	maxResponseBytes     = 1 << 20
)
