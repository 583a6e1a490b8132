package synth

import "fmt"

// Route is one modulation edge: operator From's output buffer displaces
// operator To's phase on the next render pass.
type Route struct {
	From int
	To   int
}

// Algorithm is the fixed routing graph of one voice: which operator slots
// modulate which, which slots feed their own previous chunk back into
// themselves, and which slots are mixed into the voice output.
type Algorithm struct {
	NumSlots int
	Routes   []Route
	Feedback []int
	Carriers []int
}

// Validate checks slot indices, rejects cycles other than the declared
// feedback self-loops, and requires at least one carrier.
func (a Algorithm) Validate() error {
	if a.NumSlots <= 0 {
		return fmt.Errorf("algorithm: needs at least one operator slot")
	}
	check := func(kind string, slot int) error {
		if slot < 0 || slot >= a.NumSlots {
			return fmt.Errorf("algorithm: %s slot %d out of range [0, %d)", kind, slot, a.NumSlots)
		}
		return nil
	}
	for _, r := range a.Routes {
		if err := check("route source", r.From); err != nil {
			return err
		}
		if err := check("route target", r.To); err != nil {
			return err
		}
		if r.From == r.To {
			return fmt.Errorf("algorithm: self-modulation of slot %d must be declared as feedback", r.From)
		}
	}
	for _, s := range a.Feedback {
		if err := check("feedback", s); err != nil {
			return err
		}
	}
	if len(a.Carriers) == 0 {
		return fmt.Errorf("algorithm: no carrier slots")
	}
	for _, s := range a.Carriers {
		if err := check("carrier", s); err != nil {
			return err
		}
	}
	if _, err := a.renderOrder(); err != nil {
		return err
	}
	return nil
}

// renderOrder returns a topological order over the route edges so that every
// modulator renders before the operators it feeds. Feedback self-loops are
// not edges here; they read the previous chunk and impose no ordering.
func (a Algorithm) renderOrder() ([]int, error) {
	indegree := make([]int, a.NumSlots)
	targets := make([][]int, a.NumSlots)
	for _, r := range a.Routes {
		indegree[r.To]++
		targets[r.From] = append(targets[r.From], r.To)
	}
	order := make([]int, 0, a.NumSlots)
	ready := make([]int, 0, a.NumSlots)
	for s := 0; s < a.NumSlots; s++ {
		if indegree[s] == 0 {
			ready = append(ready, s)
		}
	}
	for len(ready) > 0 {
		s := ready[0]
		ready = ready[1:]
		order = append(order, s)
		for _, t := range targets[s] {
			indegree[t]--
			if indegree[t] == 0 {
				ready = append(ready, t)
			}
		}
	}
	if len(order) != a.NumSlots {
		return nil, fmt.Errorf("algorithm: modulation routes form a cycle")
	}
	return order, nil
}

// Voice couples a set of operator slots with an Algorithm and owns every
// buffer its render path touches, so rendering never allocates. Feedback
// slots modulate the current chunk with their own previous chunk's output:
// the feedback signal lags the output by one chunk.
type Voice struct {
	slots  []*Operator
	ratios []float64
	alg    Algorithm
	order  []int

	inbound  [][]int
	feedback []bool

	cur      [][]int16
	prev     [][]int16
	modSum   []int16
	identity []int16
	chunk    int
}

// NewVoice builds a voice. ratios holds the per-slot frequency multiple
// applied to the note pitch on NoteOn (1.0 = the note itself). chunkFrames
// caps the chunk length this voice can render.
func NewVoice(slots []*Operator, ratios []float64, alg Algorithm, chunkFrames int) (*Voice, error) {
	if len(slots) != alg.NumSlots {
		return nil, fmt.Errorf("voice: %d operators for %d algorithm slots", len(slots), alg.NumSlots)
	}
	if len(ratios) != len(slots) {
		return nil, fmt.Errorf("voice: %d ratios for %d operators", len(ratios), len(slots))
	}
	for i, r := range ratios {
		if r <= 0 {
			return nil, fmt.Errorf("voice: ratio of slot %d must be positive, got %v", i, r)
		}
	}
	if chunkFrames <= 0 {
		return nil, fmt.Errorf("voice: chunk length must be positive, got %d", chunkFrames)
	}
	if err := alg.Validate(); err != nil {
		return nil, err
	}
	order, err := alg.renderOrder()
	if err != nil {
		return nil, err
	}
	v := &Voice{
		slots:    slots,
		ratios:   ratios,
		alg:      alg,
		order:    order,
		inbound:  make([][]int, alg.NumSlots),
		feedback: make([]bool, alg.NumSlots),
		cur:      make([][]int16, alg.NumSlots),
		prev:     make([][]int16, alg.NumSlots),
		modSum:   make([]int16, chunkFrames),
		identity: IdentityModulator(chunkFrames),
		chunk:    chunkFrames,
	}
	for _, r := range alg.Routes {
		v.inbound[r.To] = append(v.inbound[r.To], r.From)
	}
	for _, s := range alg.Feedback {
		v.feedback[s] = true
	}
	for s := 0; s < alg.NumSlots; s++ {
		v.cur[s] = make([]int16, chunkFrames)
		v.prev[s] = make([]int16, chunkFrames)
	}
	return v, nil
}

// NoteOn arms every slot with the note pitch scaled by its ratio.
func (v *Voice) NoteOn(pitch, velocity float64) {
	for s, op := range v.slots {
		op.NoteOn(pitch*v.ratios[s], velocity)
	}
}

// NoteOff releases every slot's envelope.
func (v *Voice) NoteOff(pitch, velocity float64) {
	for _, op := range v.slots {
		op.NoteOff(pitch, velocity)
	}
}

// IsSilent reports whether every slot is silent.
func (v *Voice) IsSilent() bool {
	for _, op := range v.slots {
		if !op.IsSilent() {
			return false
		}
	}
	return true
}

// RenderChunk renders len(out) mono samples of the whole operator graph:
// modulators first, then the operators they feed, then an equal mix of the
// carrier slots, saturated.
func (v *Voice) RenderChunk(out []int16) error {
	n := len(out)
	if n > v.chunk {
		return fmt.Errorf("voice: chunk %d exceeds configured maximum %d", n, v.chunk)
	}
	for _, s := range v.order {
		if err := v.slots[s].Render(v.modulatorFor(s, n), v.cur[s][:n]); err != nil {
			return err
		}
	}
	scale := 1 / float64(len(v.alg.Carriers))
	for i := 0; i < n; i++ {
		var sum float64
		for _, c := range v.alg.Carriers {
			sum += float64(v.cur[c][i])
		}
		out[i] = Saturate(sum * scale)
	}
	v.cur, v.prev = v.prev, v.cur
	return nil
}

// modulatorFor assembles slot s's modulation input for this chunk: its own
// previous chunk if it is a feedback slot, plus the current output of every
// slot routed into it. No sources yields the identity modulator; a single
// source is used directly; multiple sources are summed with saturation.
func (v *Voice) modulatorFor(s, n int) []int16 {
	var single []int16
	count := 0
	if v.feedback[s] {
		single = v.prev[s]
		count++
	}
	for _, m := range v.inbound[s] {
		single = v.cur[m]
		count++
	}
	switch count {
	case 0:
		return v.identity[:n]
	case 1:
		return single[:n]
	}
	sum := v.modSum[:n]
	for i := range sum {
		sum[i] = 0
	}
	add := func(buf []int16) {
		for i := 0; i < n; i++ {
			sum[i] = Saturate(float64(sum[i]) + float64(buf[i]))
		}
	}
	if v.feedback[s] {
		add(v.prev[s])
	}
	for _, m := range v.inbound[s] {
		add(v.cur[m])
	}
	return sum
}
