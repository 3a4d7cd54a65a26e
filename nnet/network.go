package nnet

import (
	"go-ml.dev/pkg/sleepnet/fu"
	"go-ml.dev/pkg/sleepnet/model"
	"go-ml.dev/pkg/zorros"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/mat"
	"math"
	"math/rand"
	"reflect"
)

/*
State is the network lifecycle stage
*/
type State int

const (
	Uninitialized State = iota
	Compiled
	Training
	Stopped
	Evaluated
	Exported
)

func (s State) String() string {
	return [...]string{"uninitialized", "compiled", "training", "stopped", "evaluated", "exported"}[s]
}

/*
Network is a dense feed-forward network. It implements model.HungryModel,
model.PredictionModel and model.Memorizer.
*/
type Network struct {
	Layers    []Dense
	Loss      Loss
	Optimizer Adam
	BatchSize int
	Seed      int64

	state   State
	inputs  int
	weights []*mat.Dense // inputs x units
	biases  [][]float64
}

const DefaultBatchSize = 32

func (n *Network) State() State {
	return n.state
}

/*
Hyper references the tunable fields for model.Params
*/
func (n *Network) Hyper() map[string]reflect.Value {
	return map[string]reflect.Value{
		"learning_rate": reflect.ValueOf(&n.Optimizer.LearningRate),
		"beta1":         reflect.ValueOf(&n.Optimizer.Beta1),
		"beta2":         reflect.ValueOf(&n.Optimizer.Beta2),
		"epsilon":       reflect.ValueOf(&n.Optimizer.Epsilon),
		"batch_size":    reflect.ValueOf(&n.BatchSize),
		"seed":          reflect.ValueOf(&n.Seed),
	}
}

/*
Compile fixes architecture, loss and optimizer and initializes weights for the input width
*/
func (n *Network) Compile(inputs int) error {
	if n.state != Uninitialized {
		return zorros.Errorf("network is already %v", n.state)
	}
	if inputs <= 0 {
		return zorros.Errorf("network needs at least one input, got %d", inputs)
	}
	if err := validate(n.Layers, n.Loss); err != nil {
		return zorros.Trace(err)
	}
	n.Optimizer = Adam{
		LearningRate: fu.Fnzd(n.Optimizer.LearningRate, DefaultAdam.LearningRate),
		Beta1:        fu.Fnzd(n.Optimizer.Beta1, DefaultAdam.Beta1),
		Beta2:        fu.Fnzd(n.Optimizer.Beta2, DefaultAdam.Beta2),
		Epsilon:      fu.Fnzd(n.Optimizer.Epsilon, DefaultAdam.Epsilon),
	}
	n.BatchSize = fu.Fnzi(n.BatchSize, DefaultBatchSize)
	rnd := rand.New(rand.NewSource(n.Seed))
	n.inputs = inputs
	n.weights, n.biases = nil, nil
	fan := inputs
	for _, d := range n.Layers {
		// glorot uniform
		limit := math.Sqrt(6 / float64(fan+d.Units))
		w := mat.NewDense(fan, d.Units, nil)
		raw := w.RawMatrix().Data
		for i := range raw {
			raw[i] = (2*rnd.Float64() - 1) * limit
		}
		n.weights = append(n.weights, w)
		n.biases = append(n.biases, make([]float64, d.Units))
		fan = d.Units
	}
	n.state = Compiled
	return nil
}

/*
Features is the expected input width
*/
func (n *Network) Features() int {
	return n.inputs
}

/*
Outputs is the output width
*/
func (n *Network) Outputs() int {
	if len(n.Layers) == 0 {
		return 0
	}
	return n.Layers[len(n.Layers)-1].Units
}

type pass struct {
	a     []*mat.Dense // a[0] is input, a[l+1] is output of layer l
	masks []*mat.Dense // inverted dropout masks, nil if layer has no dropout or not training
	act   []*mat.Dense // activations before dropout, nil where masks are nil
}

// forward computes layer outputs, dropout is applied only when rnd is not nil
func (n *Network) forward(x *mat.Dense, rnd *rand.Rand) *pass {
	p := &pass{a: []*mat.Dense{x}, masks: make([]*mat.Dense, len(n.Layers)), act: make([]*mat.Dense, len(n.Layers))}
	for l, d := range n.Layers {
		z := new(mat.Dense)
		z.Mul(p.a[l], n.weights[l])
		b := n.biases[l]
		z.Apply(func(_, j int, v float64) float64 { return v + b[j] }, z)
		d.Activation.apply(z)
		if rnd != nil && d.Dropout > 0 {
			r, c := z.Dims()
			keep := 1 - d.Dropout
			mask := mat.NewDense(r, c, nil)
			raw := mask.RawMatrix().Data
			for i := range raw {
				if rnd.Float64() < keep {
					raw[i] = 1 / keep
				}
			}
			p.act[l] = mat.DenseCopyOf(z)
			z.MulElem(z, mask)
			p.masks[l] = mask
		}
		p.a = append(p.a, z)
	}
	return p
}

// backward propagates the output error and updates weights
func (n *Network) backward(p *pass, y *mat.Dense, o *adam) {
	last := len(n.Layers)
	out := p.a[last]
	r, _ := out.Dims()
	lr := o.step()
	// softmax+categorical and sigmoid+binary cross-entropy share the gradient
	delta := new(mat.Dense)
	delta.Sub(out, y)
	delta.Scale(1/float64(r), delta)
	for l := last - 1; l >= 0; l-- {
		gw := new(mat.Dense)
		gw.Mul(p.a[l].T(), delta)
		_, c := delta.Dims()
		gb := make([]float64, c)
		for i := 0; i < r; i++ {
			for j, v := range delta.RawRowView(i) {
				gb[j] += v
			}
		}
		if l > 0 {
			prev := new(mat.Dense)
			prev.Mul(delta, n.weights[l].T())
			if m := p.masks[l-1]; m != nil {
				prev.MulElem(prev, m)
			}
			act, a := n.Layers[l-1].Activation, p.a[l]
			if p.act[l-1] != nil {
				a = p.act[l-1]
			}
			prev.Apply(func(i, j int, v float64) float64 { return v * act.derivative(a.At(i, j)) }, prev)
			delta = prev
		}
		o.update(lr, l, n.weights[l], gw, n.biases[l], gb)
	}
}

/*
Feed binds the network to the dataset, the validation slice is carved from its tail
*/
func (n *Network) Feed(ds model.Dataset) model.FatModel {
	return func(workout model.Workout) (*model.Report, error) {
		if n.state != Compiled {
			return nil, zorros.Errorf("network must be compiled before training, it is %v", n.state)
		}
		if err := n.check(ds); err != nil {
			return nil, zorros.Trace(err)
		}
		train, valid := ds.Split()
		rnd := rand.New(rand.NewSource(n.Seed + 1))
		o := newAdam(n.Optimizer, n.weights, n.biases)
		n.state = Training
		for w := workout; w != nil; w = w.Next() {
			tm := w.TrainMetrics()
			perm := rnd.Perm(train.Len())
			for b := 0; b < len(perm); b += n.BatchSize {
				batch := train.Rows(perm[b:fu.Mini(b+n.BatchSize, len(perm))])
				p := n.forward(batch.Source, rnd)
				out := p.a[len(p.a)-1]
				for i := 0; i < batch.Len(); i++ {
					loss := n.Loss.Sample(out.RawRowView(i), batch.Label.RawRowView(i))
					if !finite(loss) {
						n.state = Stopped
						return nil, xerrors.Errorf("epoch %d, batch %d: %w", w.Iteration(), b/n.BatchSize, ErrDiverged)
					}
					tm.Update(out.RawRowView(i), batch.Label.RawRowView(i), loss)
				}
				n.backward(p, batch.Label, o)
			}
			trainSummary, _ := tm.Complete()
			vm := w.ValidMetrics()
			if err := n.measure(valid, vm); err != nil {
				n.state = Stopped
				return nil, xerrors.Errorf("epoch %d, validation: %w", w.Iteration(), err)
			}
			validSummary, goal := vm.Complete()
			report, done, err := w.Complete(n, trainSummary, validSummary, goal)
			if err != nil {
				n.state = Stopped
				return nil, zorros.Trace(err)
			}
			if done {
				n.state = Stopped
				return report, nil
			}
		}
		n.state = Stopped
		return nil, zorros.Errorf("training finished without report")
	}
}

func (n *Network) check(ds model.Dataset) error {
	if ds.Len() == 0 {
		return zorros.Errorf("dataset is empty")
	}
	_, fc := ds.Source.Dims()
	lr, lc := ds.Label.Dims()
	if fc != n.inputs {
		return zorros.Errorf("dataset has %d features, network expects %d", fc, n.inputs)
	}
	if lc != n.Outputs() || lr != ds.Len() {
		return zorros.Errorf("labels are %dx%d, network expects %dx%d", lr, lc, ds.Len(), n.Outputs())
	}
	return nil
}

// measure runs inference on the dataset and feeds every sample into metrics
func (n *Network) measure(ds model.Dataset, mu model.MetricsUpdater) error {
	out := n.forward(ds.Source, nil).a[len(n.Layers)]
	for i := 0; i < ds.Len(); i++ {
		loss := n.Loss.Sample(out.RawRowView(i), ds.Label.RawRowView(i))
		if !finite(loss) {
			return xerrors.Errorf("sample %d: %w", i, ErrDiverged)
		}
		mu.Update(out.RawRowView(i), ds.Label.RawRowView(i), loss)
	}
	return nil
}

/*
Evaluate computes final metrics once training has stopped
*/
func (n *Network) Evaluate(ds model.Dataset, metrics model.Metrics) (model.Summary, error) {
	if n.state != Stopped && n.state != Evaluated {
		return model.Summary{}, zorros.Errorf("network can't be evaluated when it is %v", n.state)
	}
	if err := n.check(ds); err != nil {
		return model.Summary{}, zorros.Trace(err)
	}
	if metrics == nil {
		metrics = model.Classification{}
	}
	mu := metrics.New(0, model.TestSubset)
	if err := n.measure(ds, mu); err != nil {
		return model.Summary{}, err
	}
	s, _ := mu.Complete()
	n.state = Evaluated
	return s, nil
}

/*
Predict returns output rows for input rows
*/
func (n *Network) Predict(x *mat.Dense) (*mat.Dense, error) {
	if n.state < Stopped {
		return nil, zorros.Errorf("network is %v, it can't predict", n.state)
	}
	if _, c := x.Dims(); c != n.inputs {
		return nil, zorros.Errorf("input has %d features, network expects %d", c, n.inputs)
	}
	return n.forward(x, nil).a[len(n.Layers)], nil
}

/*
Exported marks the terminal state after all artifacts are written
*/
func (n *Network) Exported() error {
	if n.state != Evaluated && n.state != Exported {
		return zorros.Errorf("network must be evaluated before export, it is %v", n.state)
	}
	n.state = Exported
	return nil
}

func (n *Network) exportable() error {
	if n.state != Evaluated && n.state != Exported {
		return zorros.Errorf("network must be evaluated before export, it is %v", n.state)
	}
	return nil
}

type snapshot struct {
	weights []*mat.Dense
	biases  [][]float64
}

func (n *Network) Memorize() model.Snapshot {
	s := snapshot{}
	for l, w := range n.weights {
		s.weights = append(s.weights, mat.DenseCopyOf(w))
		s.biases = append(s.biases, append([]float64(nil), n.biases[l]...))
	}
	return s
}

func (n *Network) Restore(m model.Snapshot) {
	s := m.(snapshot)
	for l := range n.weights {
		n.weights[l].Copy(s.weights[l])
		copy(n.biases[l], s.biases[l])
	}
}
