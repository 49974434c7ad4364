package tasklog

import "time"

// TaskLog is one audited lifecycle event of a task.
type TaskLog struct {
	ID        string            `yaml:"id"`
	TaskID    string            `yaml:"task_id"`
	Event     string            `yaml:"event"`
	Actor     string            `yaml:"actor,omitempty"`
	Message   string            `yaml:"message"`
	Metadata  map[string]string `yaml:"metadata,omitempty"`
	CreatedAt time.Time         `yaml:"created_at"`
}
