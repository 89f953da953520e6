package domain

// Sort descreve a ordenação pedida pelo chamador. Field é validado contra uma lista
// de colunas permitidas em cada repositório; valores desconhecidos usam a ordenação padrão.
type Sort struct {
	Field string
	Desc  bool
}

// Page limita o resultado. Limit 0 significa sem limite.
type Page struct {
	Limit  int
	Offset int
}
