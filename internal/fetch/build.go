package fetch

import (
	"context"
	"fmt"
	"log"

	"mining-intel/internal/domain"
	"mining-intel/internal/fetch/stub"
)

// BuildTasks constructs fetch tasks from source descriptors. Wire sources
// connect eagerly; a wire that cannot connect fails task construction so
// misconfiguration surfaces at startup rather than mid-batch.
func BuildTasks(ctx context.Context, descriptors []domain.SourceDescriptor, logger *log.Logger) ([]Task, error) {
	tasks := make([]Task, 0, len(descriptors))
	for _, desc := range descriptors {
		var source CandidateSource
		switch desc.Kind {
		case domain.SourceKindRSS:
			source = NewRSSSource(desc.ID, desc.Endpoint, &RSSOptions{Timeout: desc.Timeout})
		case domain.SourceKindWire:
			ws, err := NewWireSource(ctx, desc.ID, desc.Endpoint, nil, logger)
			if err != nil {
				return nil, fmt.Errorf("connect wire source %s: %w", desc.ID, err)
			}
			source = ws
		case domain.SourceKindStub:
			source = stub.NewCandidateSource(nil)
		default:
			return nil, fmt.Errorf("source %s: unknown kind %q", desc.ID, desc.Kind)
		}
		tasks = append(tasks, Task{Descriptor: desc, Source: source})
	}
	return tasks, nil
}
