package config

const (
	// MaxProjectIDLength is the maximum length for project identifiers.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (ids should be short and descriptive).
	MaxProjectIDLength = 255

	// MaxUserNameLength is the maximum length for session display names.
	MaxUserNameLength = 255

	// MaxMessageLength bounds a single chat message. Longer input belongs
	// in an upload, not a chat turn.
	MaxMessageLength = 32_000

	// MaxUploadBytes is the maximum accepted upload size (10 MiB).
	MaxUploadBytes = 10 << 20

	// UploadPreviewChars is how much extracted text upload listings carry.
	UploadPreviewChars = 500

	// InvitationTokenBytes is the entropy of invitation tokens before
	// base64url encoding. 32 bytes = 256 bits.
	InvitationTokenBytes = 32

	// EngineMaxToolRounds bounds the engine's document tool loop per turn.
	EngineMaxToolRounds = 8
)
