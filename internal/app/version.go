package app

const ServiceName = "student-auth"

// Set via -ldflags during build:
//
//	go build -ldflags="-X 'student-auth/internal/app.Version=1.0.0'"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
