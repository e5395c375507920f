package core

import "github.com/shopspring/decimal"

// Requester is a person allowed to open purchase requisitions.
type Requester struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Email      string `json:"email"`
	Branch     string `json:"branch"`
}

// Reimbursement statuses.
const (
	ReimbursementPending  = "PENDENTE"
	ReimbursementApproved = "APROVADO"
	ReimbursementRejected = "REPROVADO"
	ReimbursementPaid     = "PAGO"
)

var ReimbursementStatuses = []string{ReimbursementPending, ReimbursementApproved, ReimbursementRejected, ReimbursementPaid}

// Departments are the cost centers accepted on reimbursement requests.
var Departments = []string{
	"1601 - Financeiro / Administrativo",
	"1201 - Administração da Manutenção",
	"2302 - Aterro K1",
	"2303 - Aterro K2",
	"1202 - Manutenção de veículos e equipamentos",
	"1203 - Manutenção Eletromecânica",
	"1301 - Balança",
	"1302 - Laboratório",
	"1303 - Manutenção de aterros",
	"1304 - Serviços Gerais",
	"1308 - Tecnologia da Informação",
	"1401 - Comercial",
	"1502 - Comunicação",
	"1505 - Segurança do Trabalho",
	"2401 - Coprocessamento",
	"2305 - Tratamento de efluentes privados",
}

// ExpenseTypes are the reimbursable expense categories.
var ExpenseTypes = []string{
	"Corridas de Uber, 99 ou táxi",
	"Estacionamento e pedágios",
	"Alimentação",
	"Material de escritório (canetas, papel, clips, etc.)",
	"Boletos de inscrição (cursos, eventos, concursos)",
	"Taxas públicas (DAE, GRU, cartório, etc.)",
	"Ingressos corporativos ou institucionais",
	"Manutenção de Máquinas e Equipamentos",
	"Materiais de baixo custo (torneiras, lâmpadas, tomadas)",
	"Outros",
}

// Reimbursement is an employee expense claim.
type Reimbursement struct {
	Date          Date            `json:"date"`
	Name          string          `json:"name"`
	Department    string          `json:"department"`
	ExpenseType   string          `json:"expense_type"`
	Value         decimal.Decimal `json:"value"`
	Justification string          `json:"justification"`
	Status        string          `json:"status"`
	ReceiptID     string          `json:"receipt_id"`

	Row   int               `json:"row"`
	Extra map[string]string `json:"extra,omitempty"`
}
