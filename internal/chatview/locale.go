package chatview

// Locale holds the user-facing strings of the chat page.
type Locale struct {
	Lang         string
	Title        string
	Thinking     string
	ErrorPrefix  string
	UnknownError string
	Placeholder  string
	Send         string
}

var locales = map[string]Locale{
	"zh": {
		Lang:         "zh",
		Title:        "AI 聊天",
		Thinking:     "正在思考...",
		ErrorPrefix:  "抱歉，发生了一些错误。错误信息：",
		UnknownError: "Unknown error",
		Placeholder:  "输入消息...",
		Send:         "发送",
	},
	"en": {
		Lang:         "en",
		Title:        "AI Chat",
		Thinking:     "Thinking...",
		ErrorPrefix:  "Sorry, something went wrong. Error: ",
		UnknownError: "Unknown error",
		Placeholder:  "Type a message...",
		Send:         "Send",
	},
}

// LookupLocale returns the named locale, falling back to zh.
func LookupLocale(name string) Locale {
	if l, ok := locales[name]; ok {
		return l
	}
	return locales["zh"]
}
