package engine

import (
	"context"
	"sort"
	"time"

	"github.com/rushteam/edurec/core"
)

// AnalyticsOptions 是 GetRecommendationAnalytics 的选项。
type AnalyticsOptions struct {
	// TimeRangeDays 统计窗口（天），<=0 用默认 30 天
	TimeRangeDays int

	// UserID 非空时只统计该用户的推荐记录
	UserID string

	// ContentType 非空时只统计该类型内容的推荐条目
	ContentType string
}

// AlgorithmStats 是单个算法在统计窗口内的表现。
type AlgorithmStats struct {
	Requests int     `json:"requests"`
	Items    int     `json:"items"`
	AvgScore float64 `json:"avg_score"`
}

// TrendPoint 是按天聚合的趋势点。
type TrendPoint struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Requests int    `json:"requests"`
	Items    int    `json:"items"`
}

// AnalyticsSummary 是统计窗口内的总览。
type AnalyticsSummary struct {
	TotalRequests int     `json:"total_requests"`
	TotalItems    int     `json:"total_items"`
	UniqueUsers   int     `json:"unique_users"`
	AvgScore      float64 `json:"avg_score"`
}

// Analytics 是推荐历史日志的聚合结果。所有数字都来自真实落盘的
// 推荐记录，窗口内没有数据时各项为零值，绝不用估算值填充。
type Analytics struct {
	From                   time.Time                  `json:"from"`
	To                     time.Time                  `json:"to"`
	Summary                AnalyticsSummary           `json:"summary"`
	PerformanceByAlgorithm map[string]*AlgorithmStats `json:"performance_by_algorithm"`
	Trends                 []TrendPoint               `json:"trends"`
}

// GetRecommendationAnalytics 聚合统计窗口内的推荐历史。
func (e *Engine) GetRecommendationAnalytics(ctx context.Context, opts AnalyticsOptions) (*Analytics, error) {
	days := opts.TimeRangeDays
	if days <= 0 {
		days = 30
	}
	to := e.now()
	from := to.AddDate(0, 0, -days)

	var (
		sets []*core.RecommendationSet
		err  error
	)
	if opts.UserID != "" {
		sets, err = e.history.UserHistory(ctx, opts.UserID, 0)
	} else {
		sets, err = e.history.Recent(ctx, 0)
	}
	if err != nil {
		return nil, err
	}

	out := &Analytics{
		From:                   from,
		To:                     to,
		PerformanceByAlgorithm: make(map[string]*AlgorithmStats),
	}

	users := make(map[string]bool)
	byDay := make(map[string]*TrendPoint)
	scoreSum := 0.0
	scoreCount := 0

	for _, set := range sets {
		if set.GeneratedAt.Before(from) || set.GeneratedAt.After(to) {
			continue
		}
		recs := set.Recommendations
		if opts.ContentType != "" {
			recs = e.filterByContentType(ctx, recs, opts.ContentType)
		}

		out.Summary.TotalRequests++
		out.Summary.TotalItems += len(recs)
		users[set.UserID] = true

		stats, ok := out.PerformanceByAlgorithm[set.Algorithm]
		if !ok {
			stats = &AlgorithmStats{}
			out.PerformanceByAlgorithm[set.Algorithm] = stats
		}
		stats.Requests++

		algScoreSum := 0.0
		for _, rec := range recs {
			scoreSum += rec.Score
			scoreCount++
			algScoreSum += rec.Score
		}
		// 增量均值：旧均值按旧条数还原后合并
		oldSum := stats.AvgScore * float64(stats.Items)
		stats.Items += len(recs)
		if stats.Items > 0 {
			stats.AvgScore = (oldSum + algScoreSum) / float64(stats.Items)
		}

		day := set.GeneratedAt.Format("2006-01-02")
		tp, ok := byDay[day]
		if !ok {
			tp = &TrendPoint{Date: day}
			byDay[day] = tp
		}
		tp.Requests++
		tp.Items += len(recs)
	}

	out.Summary.UniqueUsers = len(users)
	if scoreCount > 0 {
		out.Summary.AvgScore = scoreSum / float64(scoreCount)
	}

	out.Trends = make([]TrendPoint, 0, len(byDay))
	for _, tp := range byDay {
		out.Trends = append(out.Trends, *tp)
	}
	sort.Slice(out.Trends, func(i, j int) bool { return out.Trends[i].Date < out.Trends[j].Date })

	return out, nil
}

// filterByContentType 只保留指定类型的推荐条目；类型读不到的条目不过滤。
func (e *Engine) filterByContentType(ctx context.Context, recs []*core.Recommendation, contentType string) []*core.Recommendation {
	out := make([]*core.Recommendation, 0, len(recs))
	for _, rec := range recs {
		c, err := e.profiles.GetContentProfile(ctx, rec.ContentID)
		if err == nil && c.ContentType != "" && c.ContentType != contentType {
			continue
		}
		out = append(out, rec)
	}
	return out
}
