package domain

import "time"

// DefaultProbability es el precio de un mercado sin apuestas.
const DefaultProbability = 0.5

// Market es una pregunta binaria (sí/no) propuesta por un miembro del grupo.
type Market struct {
	ID          string
	Question    string
	Creator     string
	Deadline    time.Time
	Probability float64 // media de probabilidades ponderada por stake de las apuestas abiertas
	TotalStake  int64
	Active      bool
	Resolved    bool
	Resolution  *bool      // nil hasta que se resuelve
	ResolvedAt  *time.Time // nil hasta que se resuelve
	CreatedAt   time.Time
}

// NewMarket crea un mercado activo con el precio por defecto.
func NewMarket(id, question, creator string, deadline, now time.Time) Market {
	return Market{
		ID:          id,
		Question:    question,
		Creator:     creator,
		Deadline:    deadline,
		Probability: DefaultProbability,
		Active:      true,
		CreatedAt:   now,
	}
}

// IsOpen devuelve true si el mercado acepta apuestas (activo y sin resolver).
func (m Market) IsOpen() bool {
	return m.Active && !m.Resolved
}

// Expired devuelve true si now es posterior al deadline.
func (m Market) Expired(now time.Time) bool {
	return now.After(m.Deadline)
}

// HoursToDeadline devuelve las horas restantes hasta el deadline (0 si ya pasó).
func (m Market) HoursToDeadline(now time.Time) float64 {
	h := m.Deadline.Sub(now).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// MarketUpdate es una actualización parcial de un mercado.
type MarketUpdate struct {
	Probability *float64
	TotalStake  *int64
	Active      *bool
}

// Apply devuelve una copia de m con los campos presentes en upd.
func (upd MarketUpdate) Apply(m Market) Market {
	if upd.Probability != nil {
		m.Probability = *upd.Probability
	}
	if upd.TotalStake != nil {
		m.TotalStake = *upd.TotalStake
	}
	if upd.Active != nil {
		m.Active = *upd.Active
	}
	return m
}

// TruncateQuestion devuelve la pregunta truncada a maxLen caracteres.
// Si la pregunta está vacía usa el id del mercado como fallback.
func TruncateQuestion(question, marketID string, maxLen int) string {
	q := question
	if q == "" {
		q = marketID
	}
	r := []rune(q)
	if len(r) > maxLen {
		q = string(r[:maxLen-3]) + "..."
	}
	return q
}
