package analyst

import "github.com/yourusername/stock-scout/internal/models"

// latestMetrics returns the newest metrics snapshot, nil when absent.
func latestMetrics(ms []*models.FinancialMetrics) *models.FinancialMetrics {
	if len(ms) == 0 {
		return nil
	}
	return ms[0]
}

// latestLineItem returns the newest reporting period, nil when absent.
func latestLineItem(lis []*models.LineItem) *models.LineItem {
	if len(lis) == 0 {
		return nil
	}
	return lis[0]
}

// chronological returns line items oldest first without mutating the
// input, which is fetched newest first.
func chronological(lis []*models.LineItem) []*models.LineItem {
	out := make([]*models.LineItem, len(lis))
	for i, li := range lis {
		out[len(lis)-1-i] = li
	}
	return out
}
