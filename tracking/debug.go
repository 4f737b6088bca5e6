package tracking

// debugMsgFunc is set by the main package to route messages into the unified logger
var debugMsgFunc func(component, message string)

// debugMsgVerboseFunc only receives per-frame diagnostics
var debugMsgVerboseFunc func(component, message string)

// SetDebugFunction allows main package to provide the debug logger
func SetDebugFunction(fn func(component, message string)) {
	debugMsgFunc = fn
}

// SetDebugVerboseFunction allows main package to provide the verbose debug logger
func SetDebugVerboseFunction(fn func(component, message string)) {
	debugMsgVerboseFunc = fn
}

func debugMsg(component, message string) {
	if debugMsgFunc != nil {
		debugMsgFunc(component, message)
	}
}

func debugMsgVerbose(component, message string) {
	if debugMsgVerboseFunc != nil {
		debugMsgVerboseFunc(component, message)
	}
}
