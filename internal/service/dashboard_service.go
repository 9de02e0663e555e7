package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"animal-shelter/internal/core/errs"
	"animal-shelter/internal/domain"
	"animal-shelter/internal/repo"
)

var ptBRMonths = [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

type CategoryStat struct {
	Count    int     `json:"count"`
	Quantity int     `json:"quantity"`
	Amount   float64 `json:"amount"`
}

type VolunteerBrief struct {
	Name     string `json:"name"`
	Date     string `json:"date"` // dd/mm/yyyy
	ImageURL string `json:"imageUrl"`
}

type MonthBucket struct {
	Month    string  `json:"month"` // YYYY-MM
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	Quantity int     `json:"quantity"`
	Amount   float64 `json:"amount"`
}

type Stats struct {
	WindowStart         time.Time               `json:"windowStart"`
	AnimalsAdmitted     int                     `json:"animalsAdmitted"`
	AnimalsBySpecies    map[string]int          `json:"animalsBySpecies"`
	AdoptionsCount      int                     `json:"adoptionsCount"`
	AdoptionsBySpecies  map[string]int          `json:"adoptionsBySpecies"`
	AdoptionsByStatus   map[string]int          `json:"adoptionsByStatus"`
	DonationsCount      int                     `json:"donationsCount"`
	DonationsByCategory map[string]CategoryStat `json:"donationsByCategory"`
	TotalDonated        float64                 `json:"totalDonated"`
	ActiveVolunteers    []VolunteerBrief        `json:"activeVolunteers"`
	MonthlyDonations    []MonthBucket           `json:"monthlyDonations"`
}

type DashboardOptions struct {
	WindowMonths     int
	ActiveVolunteers int
	Location         *time.Location // 月份分桶和日期格式化所用时区
}

type DashboardService struct {
	store *repo.Store
	log   *zap.Logger
	opts  DashboardOptions
	now   func() time.Time
}

func NewDashboardService(store *repo.Store, log *zap.Logger, opts DashboardOptions) *DashboardService {
	if opts.WindowMonths <= 0 {
		opts.WindowMonths = 1
	}
	if opts.ActiveVolunteers <= 0 {
		opts.ActiveVolunteers = 5
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &DashboardService{store: store, log: log, opts: opts, now: time.Now}
}

// WindowStart now 往前 months 个月；months <= 0 用默认值
func (s *DashboardService) WindowStart(months int) time.Time {
	if months <= 0 {
		months = s.opts.WindowMonths
	}
	return s.now().In(s.opts.Location).AddDate(0, -months, 0)
}

// GetStats 任一查询失败即整体失败，不返回部分结果
func (s *DashboardService) GetStats(ctx context.Context, since time.Time) (*Stats, error) {
	since = since.UTC()
	st := &Stats{
		WindowStart:         since,
		AnimalsBySpecies:    map[string]int{},
		AdoptionsBySpecies:  map[string]int{},
		AdoptionsByStatus:   map[string]int{},
		DonationsByCategory: map[string]CategoryStat{},
	}

	animals, err := s.store.Animals.AdmittedSince(ctx, since)
	if err != nil {
		return nil, s.fail("animals", err)
	}
	st.AnimalsAdmitted = len(animals)
	for _, a := range animals {
		st.AnimalsBySpecies[a.Species]++
	}

	adoptions, err := s.store.Adoptions.Since(ctx, since)
	if err != nil {
		return nil, s.fail("adoptions", err)
	}
	st.AdoptionsCount = len(adoptions)
	for _, ad := range adoptions {
		st.AdoptionsByStatus[string(ad.Status)]++
		if ad.Animal != nil {
			st.AdoptionsBySpecies[ad.Animal.Species]++
		}
	}

	// 捐赠只查一次：从窗口起点与 12 个月序列起点中较早者开始，内存里分别切分
	monthStart, buckets := s.monthBuckets()
	from := since
	if monthStart.Before(from) {
		from = monthStart
	}
	donations, err := s.store.Donations.Since(ctx, from)
	if err != nil {
		return nil, s.fail("donations", err)
	}
	for _, d := range donations {
		if d.DonationDate.Before(since) {
			continue
		}
		st.DonationsCount++
		c := st.DonationsByCategory[d.Product]
		c.Count++
		c.Quantity += d.Quantity
		c.Amount += d.Amount
		st.DonationsByCategory[d.Product] = c
	}

	if st.TotalDonated, err = s.store.Donations.TotalAmount(ctx); err != nil {
		return nil, s.fail("total donated", err)
	}

	vols, err := s.store.Volunteers.RecentActive(ctx, s.opts.ActiveVolunteers)
	if err != nil {
		return nil, s.fail("volunteers", err)
	}
	st.ActiveVolunteers = make([]VolunteerBrief, 0, len(vols))
	for _, v := range vols {
		st.ActiveVolunteers = append(st.ActiveVolunteers, VolunteerBrief{
			Name:     v.Name,
			Date:     v.EntryDate.In(s.opts.Location).Format("02/01/2006"),
			ImageURL: v.ImageURL,
		})
	}

	st.MonthlyDonations = s.partitionMonthly(monthStart, buckets, donations)
	return st, nil
}

// monthBuckets 最近 12 个自然月，旧的在前；区间为 [月初, 下月初)，按配置时区
func (s *DashboardService) monthBuckets() (time.Time, []MonthBucket) {
	now := s.now().In(s.opts.Location)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.opts.Location).AddDate(0, -11, 0)

	buckets := make([]MonthBucket, 12)
	for i := range buckets {
		m := start.AddDate(0, i, 0)
		buckets[i] = MonthBucket{Month: m.Format("2006-01"), Label: ptBRMonths[m.Month()-1]}
	}
	return start.UTC(), buckets
}

func (s *DashboardService) partitionMonthly(start time.Time, buckets []MonthBucket, rows []domain.Donation) []MonthBucket {
	start = start.In(s.opts.Location)
	for _, d := range rows {
		t := d.DonationDate.In(s.opts.Location)
		i := (t.Year()-start.Year())*12 + int(t.Month()) - int(start.Month())
		if i < 0 || i >= len(buckets) {
			continue
		}
		buckets[i].Count++
		buckets[i].Quantity += d.Quantity
		buckets[i].Amount += d.Amount
	}
	return buckets
}

func (s *DashboardService) fail(what string, err error) error {
	s.log.Error("dashboard aggregation failed", zap.String("step", what), zap.Error(err))
	return errs.Persistence("dashboard stats unavailable", err)
}
