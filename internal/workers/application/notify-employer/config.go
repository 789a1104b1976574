// internal/workers/application/notify-employer/config.go
package notifyemployer

import (
	"time"

	"jobboard-workers/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	EmailEnabled  bool
	FromEmail     string
	EventsEnabled bool
	TopicARN      string
}

func LoadConfig(cfg *config.Config) *Config {
	aws := cfg.Integrations.AWS
	return &Config{
		Timeout:       config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		EmailEnabled:  aws.SES.Enabled && aws.SES.FromEmail != "",
		FromEmail:     aws.SES.FromEmail,
		EventsEnabled: aws.SNS.Enabled && aws.SNS.TopicARN != "",
		TopicARN:      aws.SNS.TopicARN,
	}
}
