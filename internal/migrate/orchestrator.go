package migrate

import (
	"context"
	"fmt"

	"github.com/voxelhealth/voxmigrate/pkg/logger"
)

// Orchestrator runs the entity migrators in their fixed dependency
// order. The order is statically known for this domain; no topological
// sort happens at runtime, but the schedule is validated once so a
// module can never start before its declared dependencies.
type Orchestrator struct {
	migrator *Migrator
	schedule []*Descriptor
}

func NewOrchestrator(migrator *Migrator, schedule []*Descriptor) (*Orchestrator, error) {
	if err := ValidateSchedule(schedule); err != nil {
		return nil, err
	}
	return &Orchestrator{migrator: migrator, schedule: schedule}, nil
}

// ValidateSchedule fails fast when a module's dependencies are not all
// scheduled earlier, or when an entity type appears twice.
func ValidateSchedule(schedule []*Descriptor) error {
	seen := make(map[EntityType]bool, len(schedule))
	for _, desc := range schedule {
		if seen[desc.Type] {
			return fmt.Errorf("entity type %s scheduled twice", desc.Type)
		}
		for _, dep := range desc.DependsOn {
			if !seen[dep.Type] {
				return fmt.Errorf("module %s depends on %s, which is not scheduled earlier", desc.Type, dep.Type)
			}
		}
		seen[desc.Type] = true
	}
	return nil
}

// RunAll executes every module in order. A module fragment containing a
// fatal failure, or a module-level error, halts the run immediately:
// downstream modules are left untouched and identity records stay
// exactly as far as they got. Non-fatal row failures accumulate in the
// report without stopping anything. The returned error is non-nil only
// when the run aborted.
func (o *Orchestrator) RunAll(ctx context.Context) (*Report, error) {
	report := NewReport()
	logger.Infof("starting migration run %s (%d modules)", report.RunID, len(o.schedule))

	for _, desc := range o.schedule {
		if err := ctx.Err(); err != nil {
			report.Halt(desc.Type, fmt.Sprintf("stopped before module: %v", err))
			break
		}
		if halted := o.runModule(ctx, desc, report); halted {
			break
		}
	}

	report.Finalize()
	logger.Infof("%s", report.Summary())
	if report.Status() == RunAborted {
		return report, fmt.Errorf("run halted in module %s: %s", report.HaltedAt, report.HaltReason)
	}
	return report, nil
}

// RunOne executes a single module in isolation, using the same migrator
// contract as the full run. Useful for resuming after a fix without
// replaying the whole sequence.
func (o *Orchestrator) RunOne(ctx context.Context, entity EntityType) (*Report, error) {
	report := NewReport()
	desc := o.find(entity)
	if desc == nil {
		report.Finalize()
		return report, fmt.Errorf("unknown entity type %q", entity)
	}

	o.runModule(ctx, desc, report)
	report.Finalize()
	logger.Infof("%s", report.Summary())
	if report.Status() == RunAborted {
		return report, fmt.Errorf("run halted in module %s: %s", report.HaltedAt, report.HaltReason)
	}
	return report, nil
}

// runModule runs one migrator and folds the fragment into the report,
// returning true when the run must halt.
func (o *Orchestrator) runModule(ctx context.Context, desc *Descriptor, report *Report) bool {
	out, err := o.migrator.Run(ctx, desc)
	report.Append(out)
	if err != nil {
		report.Halt(desc.Type, err.Error())
		return true
	}
	if out.HasFatal() {
		report.Halt(desc.Type, "module reported a fatal failure")
		return true
	}
	return false
}

func (o *Orchestrator) find(entity EntityType) *Descriptor {
	for _, desc := range o.schedule {
		if desc.Type == entity {
			return desc
		}
	}
	return nil
}
