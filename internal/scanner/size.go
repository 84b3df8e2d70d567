package scanner

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/lakshaymaurya-felt/macmole/internal/config"
	"github.com/lakshaymaurya-felt/macmole/internal/fsutil"
)

// duTimeout bounds the fast-path du invocation per candidate.
const duTimeout = config.DefaultDuTimeoutSeconds * time.Second

var errNoDuOutput = errors.New("empty du output")

// dirSize measures a directory in bytes. It prefers the du fast path and
// falls back to a manual traversal when du is unavailable or fails. The
// returned flag marks a partial measurement: some subtree could not be
// read and contributed zero.
func (s *Scanner) dirSize(ctx context.Context, path string) (int64, bool) {
	if size, err := s.duSize(ctx, path); err == nil {
		return size, false
	}
	return fsutil.WalkSize(path)
}

// duSize shells out to `du -sk`, which is dramatically faster than a
// userspace walk on large trees. Output unit is kilobytes.
func (s *Scanner) duSize(ctx context.Context, path string) (int64, error) {
	duCtx, cancel := context.WithTimeout(ctx, duTimeout)
	defer cancel()

	out, err := s.runTool(duCtx, "du", "-sk", path)
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return 0, errNoDuOutput
	}
	kb, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, err
	}
	return kb * 1024, nil
}
