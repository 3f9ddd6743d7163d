package idgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New returns "<prefix>_<unix millis>_<8 hex chars>".
func New(prefix string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), suffix)
}

func NewUserID() string {
	return New("user", time.Now())
}

func NewTaskID() string {
	return New("task", time.Now())
}
