package expense

import "fmt"

// EvenShares divides totalCents across the given users. Division is exact in
// integer cents: each user gets the floor share and the remainder is handed
// out one cent at a time starting from the first user, so the shares always
// sum back to the total.
func EvenShares(totalCents int64, userIDs []string) ([]Share, error) {
	if totalCents <= 0 {
		return nil, fmt.Errorf("%w: total must be greater than 0", ErrInvalidInput)
	}
	if len(userIDs) == 0 {
		return nil, fmt.Errorf("%w: must have at least one participant", ErrInvalidInput)
	}

	n := int64(len(userIDs))
	if totalCents < n {
		return nil, fmt.Errorf("%w: total of %d cents cannot be split %d ways", ErrInvalidInput, totalCents, n)
	}

	base := totalCents / n
	remainder := totalCents % n

	shares := make([]Share, 0, len(userIDs))
	for i, userID := range userIDs {
		amount := base
		if int64(i) < remainder {
			amount++
		}
		shares = append(shares, Share{UserID: userID, AmountCents: amount})
	}

	return shares, nil
}
