package constants

const (
	// ContextKeyUsername is the gin context key holding the verified subject username.
	ContextKeyUsername = "username"
	// ContextKeyToken is the gin context key holding the raw bearer token.
	ContextKeyToken = "token"
	// ContextKeyTask is the gin context key holding the task loaded by the ownership middleware.
	ContextKeyTask = "task"

	MaxTitleLength       = 200
	MaxDescriptionLength = 2048
)
