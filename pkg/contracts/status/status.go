package status

// Status é o código curto de situação de uma partida, como vem do provedor
// de fixtures (padrão api-football): "NS", "1H", "FT", etc.
// O vocabulário é fechado; códigos desconhecidos caem em PhaseScheduled
// e devem ser logados por quem consome.
type Status string

const (
	NotStarted  Status = "NS"
	ToBeDefined Status = "TBD"

	FirstHalf  Status = "1H"
	HalfTime   Status = "HT"
	SecondHalf Status = "2H"

	ExtraTime Status = "ET"
	BreakTime Status = "BT"
	Penalties Status = "P"

	// Partida interrompida: placar pode ser provisório, mas conta como
	// ao vivo para pontos potenciais (decisão de produto).
	Interrupted Status = "INT"

	FullTime          Status = "FT"
	AfterExtraTime    Status = "AET"
	PenaltiesFinished Status = "PEN"
)

// Phase agrupa os códigos em três fases relevantes para a pontuação.
type Phase int

const (
	PhaseScheduled Phase = iota
	PhaseLive
	PhaseFinished
)

// Phase classifica o status na fase correspondente.
func (s Status) Phase() Phase {
	switch s {
	case FirstHalf, HalfTime, SecondHalf, ExtraTime, BreakTime, Penalties, Interrupted:
		return PhaseLive
	case FullTime, AfterExtraTime, PenaltiesFinished:
		return PhaseFinished
	default:
		return PhaseScheduled
	}
}

// Scheduled indica se a partida ainda não começou.
func (s Status) Scheduled() bool { return s.Phase() == PhaseScheduled }

// Live indica se a partida está em andamento (tempo regulamentar,
// prorrogação, pênaltis ou interrompida).
func (s Status) Live() bool { return s.Phase() == PhaseLive }

// Finished indica se a partida terminou.
func (s Status) Finished() bool { return s.Phase() == PhaseFinished }

// Known informa se o código faz parte do vocabulário conhecido.
func Known(s Status) bool {
	switch s {
	case NotStarted, ToBeDefined,
		FirstHalf, HalfTime, SecondHalf,
		ExtraTime, BreakTime, Penalties,
		Interrupted,
		FullTime, AfterExtraTime, PenaltiesFinished:
		return true
	}
	return false
}
