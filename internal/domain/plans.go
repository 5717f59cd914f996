package domain

type PlanFeature struct {
	Text     string `json:"text"`
	Included bool   `json:"included"`
}

type Plan struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Price       float64       `json:"price"`
	Period      string        `json:"period"`
	Description string        `json:"description"`
	Features    []PlanFeature `json:"features"`
	Recommended bool          `json:"recommended,omitempty"`
}

// Plans is the subscription catalogue shown to barbershop owners.
func Plans() []Plan {
	return []Plan{
		{
			ID:          "free",
			Name:        "Grátis",
			Price:       0,
			Period:      "para sempre",
			Description: "Para experimentar a plataforma",
			Features: []PlanFeature{
				{"Até 30 agendamentos/mês", true},
				{"1 barbeiro", true},
				{"Fila digital básica", true},
				{"Dashboard básico", true},
				{"Notificações WhatsApp", false},
				{"Relatórios avançados", false},
				{"Suporte prioritário", false},
			},
		},
		{
			ID:          "premium",
			Name:        "Premium",
			Price:       49.90,
			Period:      "/mês",
			Description: "Agendamento OU Fila Digital",
			Features: []PlanFeature{
				{"Agendamentos ilimitados", true},
				{"Até 3 barbeiros", true},
				{"Fila digital completa", true},
				{"Dashboard completo", true},
				{"Notificações WhatsApp", false},
				{"Relatórios avançados", true},
				{"Suporte por email", true},
			},
		},
		{
			ID:          "pro",
			Name:        "Profissional",
			Price:       99.90,
			Period:      "/mês",
			Description: "Agendamento + Fila + WhatsApp",
			Recommended: true,
			Features: []PlanFeature{
				{"Agendamentos ilimitados", true},
				{"Barbeiros ilimitados", true},
				{"Fila digital completa", true},
				{"Dashboard avançado", true},
				{"Notificações WhatsApp", true},
				{"Relatórios avançados", true},
				{"Suporte prioritário 24/7", true},
			},
		},
	}
}

func PlanByID(id string) (Plan, bool) {
	for _, p := range Plans() {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}
