package port

// QueryValidator decides whether generated SQL may be executed.
type QueryValidator interface {
	Validate(sql string) error
}

// TopicMatcher finds the first configured term present in a text. Stricter
// implementations can replace the substring one without touching callers.
type TopicMatcher interface {
	Match(text string) (term string, ok bool)
}
