package dispatch

import (
	"fmt"

	"freightdesk/internal/config"
	"freightdesk/internal/port"
)

// Deps are the collaborators targets may need.
type Deps struct {
	Extractions port.ExtractionRepository
	Storage     port.ObjectStorage
	Email       port.EmailSender
}

// BuildTargets creates the targets named in cfg, in order.
func BuildTargets(cfg *config.DispatchConfig, deps Deps) ([]port.ExportTarget, error) {
	var targets []port.ExportTarget
	for _, name := range cfg.Targets {
		switch name {
		case "postgres":
			if deps.Extractions == nil {
				return nil, fmt.Errorf("dispatch target %q needs an extraction repository", name)
			}
			targets = append(targets, NewPostgresTarget(deps.Extractions))
		case "s3":
			if deps.Storage == nil {
				return nil, fmt.Errorf("dispatch target %q needs object storage", name)
			}
			targets = append(targets, NewArchiveTarget(deps.Storage, cfg.ExportBucket, cfg.ExportPrefix))
		case "email":
			if deps.Email == nil {
				return nil, fmt.Errorf("dispatch target %q needs an email sender", name)
			}
			targets = append(targets, NewEmailTarget(deps.Email, cfg.NotifyAddress))
		case "log":
			targets = append(targets, LogTarget{})
		default:
			return nil, fmt.Errorf("unknown dispatch target: %s", name)
		}
	}
	return targets, nil
}
