package protect

import "strings"

// NumericMerchantVerifier is the shipped MerchantVerifier: an empty merchant
// number passes (records without a merchant block carry none), a present one
// must be all digits and between 5 and 16 characters long.
type NumericMerchantVerifier struct{}

// NewNumericMerchantVerifier creates the default merchant verifier.
func NewNumericMerchantVerifier() *NumericMerchantVerifier {
	return &NumericMerchantVerifier{}
}

// IsValidMerchant implements MerchantVerifier.
func (v *NumericMerchantVerifier) IsValidMerchant(merchantNumber string) bool {
	merchantNumber = strings.TrimSpace(merchantNumber)
	if merchantNumber == "" {
		return true
	}
	if len(merchantNumber) < 5 || len(merchantNumber) > 16 {
		return false
	}
	for _, r := range merchantNumber {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
