package domain

// Stage identifies a step of the build pipeline.
type Stage string

const (
	// StageManifest loads and validates the manifest.
	StageManifest Stage = "manifest"
	// StagePrecondition stops running instances and removes prior outputs.
	StagePrecondition Stage = "precondition"
	// StageHooks runs pre-build hook commands.
	StageHooks Stage = "hooks"
	// StageResolve computes the module closure.
	StageResolve Stage = "resolve"
	// StageStage copies the closure and data into the staging tree.
	StageStage Stage = "stage"
	// StageAssemble produces the bundle directory and launcher.
	StageAssemble Stage = "assemble"
	// StagePackage writes the release directory and archive.
	StagePackage Stage = "package"
)

// Stages lists the pipeline stages in execution order.
var Stages = []Stage{
	StageManifest,
	StagePrecondition,
	StageHooks,
	StageResolve,
	StageStage,
	StageAssemble,
	StagePackage,
}

// ExitCode returns the process exit status reported when the stage fails.
func (s Stage) ExitCode() int {
	switch s {
	case StageManifest:
		return 2
	case StagePrecondition, StageHooks:
		return 3
	case StageResolve:
		return 4
	case StageStage:
		return 5
	case StageAssemble:
		return 6
	case StagePackage:
		return 7
	default:
		return 1
	}
}

// String returns the stage name.
func (s Stage) String() string {
	return string(s)
}
