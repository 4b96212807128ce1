package resolution

import (
	"strings"

	"ResolutionScanner/internal/domain"
)

var (
	expressWithdrawalKeywords = []string{"DESISTIMIENTO EXPRESO", "RENUNCIA A LA SOLICITUD"}
	withdrawalKeywords        = []string{"DESISTIMIENTO", "DESISTIDOS"}
	inadmissionKeywords       = []string{"INADMISIÓN", "INADMISION"}
	concessionKeywords        = []string{"CONCESIÓN", "CONCESION"}
)

// Classifier assigns a resolution type by keyword. The first matching family
// wins: withdrawal, then inadmission, then concession.
type Classifier struct {
	// SplitExpressWithdrawal reports express withdrawals (applicant
	// renounced) separately instead of folding them into withdrawal.
	SplitExpressWithdrawal bool
}

// Classify returns domain.ResolutionUnresolved when no family matches.
func (c Classifier) Classify(text string) domain.ResolutionType {
	text = strings.ToUpper(text)

	if c.SplitExpressWithdrawal && containsAny(text, expressWithdrawalKeywords) {
		return domain.ResolutionExpressWithdrawal
	}
	switch {
	case containsAny(text, withdrawalKeywords):
		return domain.ResolutionWithdrawal
	case containsAny(text, inadmissionKeywords):
		return domain.ResolutionInadmission
	case containsAny(text, concessionKeywords):
		return domain.ResolutionConcession
	}
	return domain.ResolutionUnresolved
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
