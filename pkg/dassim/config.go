package dassim

// Config carries the options spec.md §6 lists as core-affecting: everything
// else (numJobs, sweep fan-out) is orchestrator-only and lives in
// pkg/dassweep/pkg/dasconfig instead.
type Config struct {
	EvenLineDistribution bool   `yaml:"evenLineDistribution"`
	SaveProgress         bool   `yaml:"saveProgress"`
	LogLevel             string `yaml:"logLevel"`
	Deterministic        bool   `yaml:"deterministic"`
	RandomSeed           int64  `yaml:"randomSeed"`

	Schedulers SchedulerConfig `yaml:"schedulers"`
}
