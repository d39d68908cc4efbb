package cfg

const (
	CommandServe    = "serve"
	CommandGenerate = "generate"
	CommandImport   = "import"
)

type Cfg struct {
	// Command selected on the command line; serve when none is given
	Command string

	// Feed configuration
	FeedsDir string
	BaseURL  string
	DBPath   string

	// serve
	Port         string
	WarmSchedule string

	// generate
	StaticDir string

	// import
	ImportFile string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
