package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpegForYtdlp reports the FFmpeg binary yt-dlp will use for merging
// formats, remuxing and embedding subtitles.
//
// yt-dlp prefers an ffmpeg that sits next to its own executable and falls
// back to PATH. optional marks FFmpeg as not needed, which is the case when
// downloads are disabled.
func CheckFFmpegForYtdlp(ytdlpCommand string, optional bool) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Used by yt-dlp to merge streams and remux downloads",
		Optional:    optional,
	}

	if ytdlp := strings.TrimSpace(ytdlpCommand); ytdlp != "" {
		if resolved, err := exec.LookPath(ytdlp); err == nil {
			candidate := filepath.Join(filepath.Dir(resolved), executableName("ffmpeg"))
			if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
				result.Command = candidate
				result.Path = candidate
				result.Available = true
				return result
			}
		}
	}

	const ffmpegName = "ffmpeg"
	result.Command = ffmpegName
	if ffmpegPath, err := exec.LookPath(ffmpegName); err == nil {
		result.Command = ffmpegPath
		result.Path = ffmpegPath
		result.Available = true
		return result
	}
	result.Detail = fmt.Sprintf("binary %q not found", ffmpegName)
	return result
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
