package insighting

import (
	"strings"
	"time"

	"github.com/vfg2006/shop-ops-api/internal/domain"
)

// Period é uma janela móvel resolvida a partir de um timeframe.
// O período atual é fechado nas duas pontas: [StartDate, EndDate].
type Period struct {
	Timeframe   domain.Timeframe
	StartDate   time.Time
	EndDate     time.Time
	Granularity domain.Granularity
}

// ResolvePeriod converte o timeframe em um intervalo concreto terminando em now.
// Timeframes desconhecidos são tratados como "month".
func ResolvePeriod(timeframe string, now time.Time) Period {
	tf := domain.Timeframe(strings.ToLower(strings.TrimSpace(timeframe)))

	var start time.Time
	granularity := domain.GranularityDay

	switch tf {
	case domain.TimeframeDay:
		start = midnight(now)
		granularity = domain.GranularityHour
	case domain.TimeframeWeek:
		start = midnight(now.AddDate(0, 0, -7))
	case domain.TimeframeQuarter:
		start = midnight(now.AddDate(0, 0, -90))
		granularity = domain.GranularityMonth
	case domain.TimeframeYear:
		start = midnight(now.AddDate(0, 0, -365))
		granularity = domain.GranularityMonth
	default:
		tf = domain.TimeframeMonth
		start = midnight(now.AddDate(0, 0, -30))
	}

	return Period{
		Timeframe:   tf,
		StartDate:   start,
		EndDate:     now,
		Granularity: granularity,
	}
}

// Previous retorna o período imediatamente anterior, com a mesma duração.
// O período anterior é semiaberto: [StartDate, EndDate).
func (p Period) Previous() Period {
	duration := p.EndDate.Sub(p.StartDate)

	return Period{
		Timeframe:   p.Timeframe,
		StartDate:   p.StartDate.Add(-duration),
		EndDate:     p.StartDate,
		Granularity: p.Granularity,
	}
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.StartDate) && !t.After(p.EndDate)
}

func (p Period) containsHalfOpen(t time.Time) bool {
	return !t.Before(p.StartDate) && t.Before(p.EndDate)
}

// Truncate normaliza a data para o início do bucket. É a chave do bucket.
func (p Period) Truncate(t time.Time) time.Time {
	t = t.In(p.StartDate.Location())

	switch p.Granularity {
	case domain.GranularityHour:
		// subtrai minutos e segundos do instante; time.Date seria ambíguo na hora repetida do fim do horário de verão
		offset := time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second + time.Duration(t.Nanosecond())
		return t.Add(-offset)
	case domain.GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return midnight(t)
	}
}

// Buckets retorna o início de cada bucket cobrindo o período sem lacunas.
// O dia tem 23 ou 25 buckets horários quando há troca de horário de verão.
func (p Period) Buckets() []time.Time {
	buckets := make([]time.Time, 0)

	switch p.Granularity {
	case domain.GranularityHour:
		day := midnight(p.StartDate)
		next := midnight(day.AddDate(0, 0, 1))
		for current := day; current.Before(next); current = current.Add(time.Hour) {
			buckets = append(buckets, current)
		}
	case domain.GranularityMonth:
		for current := p.Truncate(p.StartDate); !current.After(p.EndDate); current = current.AddDate(0, 1, 0) {
			buckets = append(buckets, current)
		}
	default:
		for current := p.Truncate(p.StartDate); !current.After(p.EndDate); current = midnight(current.AddDate(0, 0, 1)) {
			buckets = append(buckets, current)
		}
	}

	return buckets
}

// Label formata o bucket para exibição no gráfico. Não identifica o bucket.
func (p Period) Label(t time.Time) string {
	t = t.In(p.StartDate.Location())

	switch {
	case p.Granularity == domain.GranularityHour:
		return t.Format("3 PM")
	case p.Granularity == domain.GranularityMonth:
		return t.Format("Jan")
	case p.Timeframe == domain.TimeframeWeek:
		return t.Format("Mon")
	default:
		return t.Format("2")
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
