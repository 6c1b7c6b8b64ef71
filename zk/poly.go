package zk

// DivideByVanishing divides coeffs (the coefficients of a polynomial
// f of degree < len(coeffs)) by (x^n - 1), returning the quotient's
// coefficients. The caller (the composition step) only ever calls this
// on a polynomial known to vanish at every n-th root of unity, so the
// division is exact and no remainder is computed.
func DivideByVanishing(coeffs []BaseElement, n int) []BaseElement {
	d := len(coeffs) - 1
	qLen := d - n + 1
	if qLen <= 0 {
		return nil
	}
	q := make([]BaseElement, qLen)
	for k := qLen - 1; k >= 0; k-- {
		q[k] = coeffs[k+n]
		if k+n <= qLen-1 {
			q[k] = q[k].Add(q[k+n])
		}
	}
	return q
}

// MultiplyByLinear returns the coefficients of (x - root) * p(x), where
// p has coefficients `coeffs`. Used to turn a residual that vanishes
// everywhere on the trace domain except one excluded point into one
// that vanishes everywhere, so it can be divided exactly by the full
// domain vanishing polynomial.
func MultiplyByLinear(coeffs []BaseElement, root BaseElement) []BaseElement {
	if len(coeffs) == 0 {
		return nil
	}
	out := make([]BaseElement, len(coeffs)+1)
	negRoot := Zero().Sub(root)
	for i, c := range coeffs {
		out[i] = out[i].Add(c.Mul(negRoot))
		out[i+1] = out[i+1].Add(c)
	}
	return out
}

// DivideByLinear divides coeffs by (x - root) via synthetic division,
// returning the quotient's coefficients. Like DivideByVanishing, this
// is only ever called on a polynomial known to vanish at root, so the
// remainder is not returned.
func DivideByLinear(coeffs []BaseElement, root BaseElement) []BaseElement {
	if len(coeffs) == 0 {
		return nil
	}
	n := len(coeffs) - 1
	q := make([]BaseElement, n)
	carry := Zero()
	for i := n; i >= 1; i-- {
		carry = coeffs[i].Add(carry)
		q[i-1] = carry
		carry = carry.Mul(root)
	}
	return q
}
