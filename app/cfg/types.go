package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	CompaniesDir      string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Scraper configuration
	MaxPages         int
	StartPage        int
	PageStride       int
	DelayMin         int
	DelayMax         int
	Concurrency      int
	FetchDetails     bool
	MinTextLength    int
	NavTimeout       int
	ChallengeTimeout int
	Headless         bool
	DebugDir         string

	// AI configuration
	GeminiAPIKey string
	GeminiModel  string

	// Coupon configuration
	CouponPrefix string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
