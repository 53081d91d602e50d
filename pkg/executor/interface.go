package executor

import "context"

// Executor runs external commands (ffmpeg, ffprobe, whisper, yt-dlp).
// Tests substitute fakes so no media tooling is needed on the machine.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
}
