package job

import (
	"math"
	"time"
)

type StatsOverview struct {
	TotalJobs      int `json:"total_jobs"`
	ActiveJobs     int `json:"active_jobs"`
	ExpiredJobs    int `json:"expired_jobs"`
	WeeklyNewJobs  int `json:"weekly_new_jobs"`
	MonthlyNewJobs int `json:"monthly_new_jobs"`
}

type StatsPerformance struct {
	TotalViews          int     `json:"total_views"`
	AvgViewsPerJob      float64 `json:"avg_views_per_job"`
	MaxViews            int     `json:"max_views"`
	TotalApplicants     int     `json:"total_applicants"`
	AvgApplicantsPerJob float64 `json:"avg_applicants_per_job"`
	MaxApplicants       int     `json:"max_applicants"`
	ConversionRate      float64 `json:"conversion_rate"`
}

type StatsDistribution struct {
	JobsByType            map[string]int `json:"jobs_by_type"`
	JobsByEmploymentType  map[string]int `json:"jobs_by_employment_type"`
	JobsByExperienceLevel map[string]int `json:"jobs_by_experience_level"`
}

type StatsTopLists struct {
	TopCompanies    map[string]int `json:"top_companies"`
	TopLocations    map[string]int `json:"top_locations"`
	MostViewedJobs  []*JobPost     `json:"most_viewed_jobs"`
	MostAppliedJobs []*JobPost     `json:"most_applied_jobs"`
}

type StatsRecentActivity struct {
	RecentJobs        []*JobPost `json:"recent_jobs"`
	RecentExpiredJobs int        `json:"recent_expired_jobs"`
}

type Stats struct {
	Overview       StatsOverview       `json:"overview"`
	Performance    StatsPerformance    `json:"performance"`
	Distribution   StatsDistribution   `json:"distribution"`
	TopLists       StatsTopLists       `json:"top_lists"`
	RecentActivity StatsRecentActivity `json:"recent_activity"`
}

// PeriodAnalytics holds the rolling-window metrics keyed under
// today/week/month/quarter/year in the analytics response.
type PeriodAnalytics struct {
	JobsPosted          int     `json:"jobs_posted"`
	JobsActive          int     `json:"jobs_active"`
	TotalViews          int     `json:"total_views"`
	TotalApplicants     int     `json:"total_applicants"`
	AvgViewsPerJob      float64 `json:"avg_views_per_job"`
	AvgApplicantsPerJob float64 `json:"avg_applicants_per_job"`
}

var analyticsPeriods = []struct {
	Name string
	Days int
}{
	{"today", 1},
	{"week", 7},
	{"month", 30},
	{"quarter", 90},
	{"year", 365},
}

// JobStats aggregates the global dashboard numbers across all jobs,
// active or not.
func (r *Repository) JobStats() (*Stats, error) {
	stats := &Stats{}
	now := time.Now().UTC()
	lastWeek := now.AddDate(0, 0, -7)
	lastMonth := now.AddDate(0, 0, -30)

	err := r.db.QueryRow(`SELECT
		count(*),
		count(*) FILTER (WHERE is_active = TRUE),
		count(*) FILTER (WHERE is_active = TRUE AND expiry_date < $1),
		count(*) FILTER (WHERE posted_date >= $2),
		count(*) FILTER (WHERE posted_date >= $3)
		FROM job`, now, lastWeek, lastMonth).Scan(
		&stats.Overview.TotalJobs,
		&stats.Overview.ActiveJobs,
		&stats.Overview.ExpiredJobs,
		&stats.Overview.WeeklyNewJobs,
		&stats.Overview.MonthlyNewJobs,
	)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(`SELECT
		COALESCE(SUM(views), 0),
		COALESCE(AVG(views), 0),
		COALESCE(MAX(views), 0),
		COALESCE(SUM(applicants), 0),
		COALESCE(AVG(applicants), 0),
		COALESCE(MAX(applicants), 0)
		FROM job`).Scan(
		&stats.Performance.TotalViews,
		&stats.Performance.AvgViewsPerJob,
		&stats.Performance.MaxViews,
		&stats.Performance.TotalApplicants,
		&stats.Performance.AvgApplicantsPerJob,
		&stats.Performance.MaxApplicants,
	)
	if err != nil {
		return nil, err
	}
	stats.Performance.AvgViewsPerJob = round2(stats.Performance.AvgViewsPerJob)
	stats.Performance.AvgApplicantsPerJob = round2(stats.Performance.AvgApplicantsPerJob)
	stats.Performance.ConversionRate = ConversionRate(stats.Performance.TotalApplicants, stats.Performance.TotalViews)

	stats.Distribution.JobsByType, err = r.countsByColumn("job_type", 0)
	if err != nil {
		return nil, err
	}
	stats.Distribution.JobsByEmploymentType, err = r.countsByColumn("employment_type", 0)
	if err != nil {
		return nil, err
	}
	stats.Distribution.JobsByExperienceLevel, err = r.countsByColumn("experience_level", 0)
	if err != nil {
		return nil, err
	}

	stats.TopLists.TopCompanies, err = r.countsByColumn("company", 10)
	if err != nil {
		return nil, err
	}
	stats.TopLists.TopLocations, err = r.countsByColumn("location", 10)
	if err != nil {
		return nil, err
	}
	stats.TopLists.MostViewedJobs, err = r.queryJobs(`SELECT ` + jobCols + ` FROM job ORDER BY views DESC LIMIT 5`)
	if err != nil {
		return nil, err
	}
	stats.TopLists.MostAppliedJobs, err = r.queryJobs(`SELECT ` + jobCols + ` FROM job ORDER BY applicants DESC LIMIT 5`)
	if err != nil {
		return nil, err
	}

	stats.RecentActivity.RecentJobs, err = r.queryJobs(
		`SELECT `+jobCols+` FROM job WHERE posted_date >= $1 ORDER BY posted_date DESC LIMIT 5`, lastMonth)
	if err != nil {
		return nil, err
	}
	err = r.db.QueryRow(
		`SELECT count(*) FROM job WHERE expiry_date >= $1 AND expiry_date < $2`,
		lastWeek, now).Scan(&stats.RecentActivity.RecentExpiredJobs)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// JobAnalytics recomputes the posting and engagement metrics for each
// rolling window independently.
func (r *Repository) JobAnalytics() (map[string]PeriodAnalytics, error) {
	now := time.Now().UTC()
	out := make(map[string]PeriodAnalytics, len(analyticsPeriods))
	for _, period := range analyticsPeriods {
		start := now.AddDate(0, 0, -period.Days)
		var p PeriodAnalytics
		err := r.db.QueryRow(`SELECT
			count(*),
			count(*) FILTER (WHERE is_active = TRUE),
			COALESCE(SUM(views), 0),
			COALESCE(SUM(applicants), 0),
			COALESCE(AVG(views), 0),
			COALESCE(AVG(applicants), 0)
			FROM job WHERE posted_date >= $1`, start).Scan(
			&p.JobsPosted,
			&p.JobsActive,
			&p.TotalViews,
			&p.TotalApplicants,
			&p.AvgViewsPerJob,
			&p.AvgApplicantsPerJob,
		)
		if err != nil {
			return out, err
		}
		p.AvgViewsPerJob = round2(p.AvgViewsPerJob)
		p.AvgApplicantsPerJob = round2(p.AvgApplicantsPerJob)
		out[period.Name] = p
	}
	return out, nil
}

func (r *Repository) countsByColumn(column string, max int) (map[string]int, error) {
	query := `SELECT ` + column + `, count(*) AS job_count FROM job GROUP BY ` + column + ` ORDER BY job_count DESC`
	args := []interface{}{}
	if max > 0 {
		query += ` LIMIT $1`
		args = append(args, max)
	}
	out := map[string]int{}
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return out, err
		}
		out[key] = count
	}
	return out, rows.Err()
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
