package aria2

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"

	"aria2tm/internal/common"
)

// BuildCommand maps a task config onto an aria2c argument vector, creating
// the output directory first. The only error it can return is a failed
// directory creation; everything else always produces a valid vector.
//
// allow-overwrite and auto-file-renaming are fixed policy so that repeated
// resume/restart cycles never produce duplicate "(1)"-suffixed files.
func BuildCommand(bin string, cfg *common.TaskConfig) ([]string, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", cfg.Dir, err)
	}

	args := []string{bin}

	if cfg.Resume {
		args = append(args, "-c")
	}

	allocation := cfg.FileAllocation
	if allocation == "" {
		allocation = "none"
	}
	args = append(args, "--file-allocation="+allocation)

	split := cfg.Split
	if split < 1 {
		split = 1
	}
	maxConn := cfg.MaxConnections
	if maxConn < 1 {
		maxConn = split
	}
	args = append(args,
		fmt.Sprintf("--split=%d", split),
		fmt.Sprintf("--max-connection-per-server=%d", maxConn),
	)

	if cfg.MaxTries > 0 {
		args = append(args, fmt.Sprintf("--max-tries=%d", cfg.MaxTries))
	}
	if cfg.RetryWait > 0 {
		args = append(args, fmt.Sprintf("--retry-wait=%d", cfg.RetryWait))
	}
	if cfg.MaxDownloadLimit != "" {
		args = append(args, "--max-download-limit="+cfg.MaxDownloadLimit)
	}
	if cfg.MaxUploadLimit != "" {
		args = append(args, "--max-upload-limit="+cfg.MaxUploadLimit)
	}
	if cfg.Referer != "" {
		args = append(args, "--referer="+cfg.Referer)
	}
	if cfg.UserAgent != "" {
		args = append(args, "--user-agent="+cfg.UserAgent)
	}

	for _, header := range cfg.Headers {
		header = strings.TrimSpace(header)
		if header != "" {
			args = append(args, "--header="+header)
		}
	}

	args = append(args, "--allow-overwrite=true", "--auto-file-renaming=false")

	if cfg.Filename != "" {
		args = append(args, "-d", cfg.Dir, "-o", cfg.Filename)
	} else {
		args = append(args, "-d", cfg.Dir)
	}

	if cfg.ExtraArgs != "" {
		extra, err := shlex.Split(cfg.ExtraArgs)
		if err != nil {
			// Fall back to naive whitespace splitting rather than aborting.
			extra = strings.Fields(cfg.ExtraArgs)
		}
		args = append(args, extra...)
	}

	args = append(args, cfg.URL)

	return args, nil
}
