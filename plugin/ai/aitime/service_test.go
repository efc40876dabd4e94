package aitime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Resolve(t *testing.T) {
	svc := NewService(TimeDefaults{PeriodEvening: "21:00"})
	ctx := context.Background()

	got, err := svc.Resolve(ctx, "明天晚上", TemporalContext{Now: refNow, OffsetMinutes: 480})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-28T13:00:00Z", FormatISO(got))

	// Per-call defaults win over service defaults.
	tc := NewTemporalContext(refNow, 480, TimeDefaults{PeriodEvening: "19:30"})
	got, err = svc.Resolve(ctx, "明天晚上", tc)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-28T11:30:00Z", FormatISO(got))

	_, err = svc.Resolve(ctx, "买牛奶", shanghaiContext())
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestService_CanceledContext(t *testing.T) {
	svc := NewService(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Resolve(ctx, "明天", shanghaiContext())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Range(t *testing.T) {
	svc := NewService(nil)
	tc := shanghaiContext()
	loc := tc.Location()

	tests := []struct {
		name      string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{RangeToday, time.Date(2026, 1, 27, 0, 0, 0, 0, loc), time.Date(2026, 1, 28, 0, 0, 0, 0, loc)},
		{RangeTomorrow, time.Date(2026, 1, 28, 0, 0, 0, 0, loc), time.Date(2026, 1, 29, 0, 0, 0, 0, loc)},
		{RangeThisWeek, time.Date(2026, 1, 26, 0, 0, 0, 0, loc), time.Date(2026, 2, 2, 0, 0, 0, 0, loc)},
		{RangeNextWeek, time.Date(2026, 2, 2, 0, 0, 0, 0, loc), time.Date(2026, 2, 9, 0, 0, 0, 0, loc)},
		{RangeThisMonth, time.Date(2026, 1, 1, 0, 0, 0, 0, loc), time.Date(2026, 2, 1, 0, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := svc.Range(context.Background(), tt.name, tc)
			require.NoError(t, err)
			assert.True(t, tt.wantStart.Equal(r.Start), "start %s", r.Start)
			assert.True(t, tt.wantEnd.Equal(r.End), "end %s", r.End)
			assert.True(t, r.Contains(r.Start))
			assert.False(t, r.Contains(r.End))
		})
	}

	_, err := svc.Range(context.Background(), "yesterday", tc)
	assert.Error(t, err)
}

func TestMockTimeService(t *testing.T) {
	mock := NewMockTimeService()
	want := time.Date(2026, 1, 28, 1, 0, 0, 0, time.UTC)
	mock.Phrases["明天"] = want

	got, err := mock.Resolve(context.Background(), " 明天 ", TemporalContext{})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = mock.Resolve(context.Background(), "后天", TemporalContext{})
	assert.ErrorIs(t, err, ErrUnresolved)
	assert.Equal(t, []string{"明天", "后天"}, mock.Calls)

	fixed := refNow
	mock.FixedNow = &fixed
	r, err := mock.Range(context.Background(), RangeToday, TemporalContext{OffsetMinutes: 480})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-26T16:00:00Z", FormatISO(r.Start))
}

func TestTimeDefaults_Set(t *testing.T) {
	d := DefaultTimeDefaults()

	tests := []struct {
		name    string
		period  string
		value   string
		wantErr bool
		want    string
	}{
		{"valid hh:mm", PeriodMorning, "07:30", false, "07:30"},
		{"valid hh:mm:ss", PeriodNoon, "12:30:15", false, "12:30:15"},
		{"single digit hour", PeriodAfternoon, "9:00", true, "15:00"},
		{"garbage", PeriodEvening, "late", true, "20:00"},
		{"unknown period", "midnight", "00:00", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.Set(tt.period, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, d[tt.period])
		})
	}
}

func TestTimeDefaults_MergeAndValidate(t *testing.T) {
	base := DefaultTimeDefaults()
	merged := base.Merge(TimeDefaults{PeriodMorning: "08:00", PeriodEvening: "bad"})

	assert.Equal(t, "08:00", merged[PeriodMorning])
	assert.Equal(t, "20:00", merged[PeriodEvening])
	assert.Equal(t, "09:00", base[PeriodMorning], "merge must not modify the receiver")

	assert.NoError(t, merged.Validate())
	assert.Error(t, TimeDefaults{PeriodNoon: "noon"}.Validate())

	h, m, s := TimeDefaults{}.Clock(PeriodNoon)
	assert.Equal(t, []int{12, 0, 0}, []int{h, m, s})
}

func TestTemporalContext_Location(t *testing.T) {
	assert.Equal(t, time.UTC, TemporalContext{}.Location())

	_, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, TemporalContext{OffsetMinutes: 330}.Location()).Zone()
	assert.Equal(t, 330*60, offset)
	assert.Equal(t, "UTC-03:30", formatOffset(-210))
}
