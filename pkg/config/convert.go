package config

import (
	"sort"

	"radsweep-hq/radsweep/pkg/accounting/storage"
	"radsweep-hq/radsweep/pkg/jobs"
)

// SQLConfig converts the database section into store options.
func (d DatabaseConfig) SQLConfig() *storage.SQLConfig {
	return &storage.SQLConfig{
		Driver:       d.Driver,
		DSN:          d.DSN,
		Path:         d.Path,
		MaxOpenConns: d.MaxOpenConns,
		MaxIdleConns: d.MaxIdleConns,
		BusyTimeout:  d.BusyTimeout,
		Migrate:      d.MigrateOnStart,
	}
}

// ScheduleEntries returns the enabled jobs as scheduler entries, sorted by
// job name.
func (c *Config) ScheduleEntries() []jobs.Entry {
	var entries []jobs.Entry
	for name, job := range c.Jobs {
		if !job.IsEnabled() {
			continue
		}
		params := make(jobs.Params, len(job.Params))
		for k, v := range job.Params {
			params[k] = v
		}
		entries = append(entries, jobs.Entry{
			Job:      name,
			Schedule: job.Schedule,
			Params:   params,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Job < entries[j].Job })
	return entries
}
