package logging

// Per-category convenience wrappers, matching the teacher's
// CategoryXDebug/CategoryXWarn helper pattern so call sites don't repeat
// logging.Get(logging.CategoryX).Debug(...) everywhere.

func ParserDebug(format string, args ...interface{}) { Get(CategoryParser).Debug(format, args...) }
func ParserWarn(format string, args ...interface{})  { Get(CategoryParser).Warn(format, args...) }

func GraphStoreDebug(format string, args ...interface{}) { Get(CategoryGraphStore).Debug(format, args...) }
func GraphStoreWarn(format string, args ...interface{})  { Get(CategoryGraphStore).Warn(format, args...) }

func VectorStoreDebug(format string, args ...interface{}) {
	Get(CategoryVectorStore).Debug(format, args...)
}
func VectorStoreWarn(format string, args ...interface{}) { Get(CategoryVectorStore).Warn(format, args...) }

func CacheDebug(format string, args ...interface{}) { Get(CategoryCache).Debug(format, args...) }

func AnalysisDebug(format string, args ...interface{}) { Get(CategoryAnalysis).Debug(format, args...) }

func AgentDebug(format string, args ...interface{}) { Get(CategoryAgent).Debug(format, args...) }
func AgentInfo(format string, args ...interface{})  { Get(CategoryAgent).Info(format, args...) }
func AgentWarn(format string, args ...interface{})  { Get(CategoryAgent).Warn(format, args...) }
func AgentError(format string, args ...interface{}) { Get(CategoryAgent).Error(format, args...) }

func ToolsDebug(format string, args ...interface{}) { Get(CategoryTools).Debug(format, args...) }

func MCPDebug(format string, args ...interface{}) { Get(CategoryMCP).Debug(format, args...) }
func MCPInfo(format string, args ...interface{})  { Get(CategoryMCP).Info(format, args...) }

func LLMDebug(format string, args ...interface{}) { Get(CategoryLLM).Debug(format, args...) }
func LLMWarn(format string, args ...interface{})  { Get(CategoryLLM).Warn(format, args...) }
