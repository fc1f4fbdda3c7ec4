package flags

var (
	DataDir string
	Config  string
	Debug   bool
	LogStd  bool
)
