package indicators

// emaState: инкрементальная EMA, сидируется первым значением.
type emaState struct {
	period int
	alpha  float64
	value  float64
	warmup int
}

func newEMA(period int) emaState {
	if period <= 1 {
		period = 1
	}
	return emaState{
		period: period,
		alpha:  2.0 / (float64(period) + 1),
	}
}

func (e *emaState) Update(v float64) {
	if e.warmup == 0 {
		e.value = v
		e.warmup = 1
		return
	}
	e.value = e.alpha*v + (1-e.alpha)*e.value
	if e.warmup < e.period {
		e.warmup++
	}
}

func (e *emaState) Ready() bool    { return e.warmup >= e.period }
func (e *emaState) Value() float64 { return e.value }

// emaSeries: значения EMA начиная с момента готовности (len(values)-period+1 штук).
func emaSeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	e := newEMA(period)
	out := make([]float64, 0, len(values)-period+1)
	for _, v := range values {
		e.Update(v)
		if e.Ready() {
			out = append(out, e.Value())
		}
	}
	return out
}
