package policy

import (
	"encoding/json"
	"fmt"

	"github.com/mcoot/spreadgame/internal/dependencies/random"
	"github.com/mcoot/spreadgame/internal/model"
)

// Layer is one fully connected layer. Weights[o][i] links input i to
// output o.
type Layer struct {
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`
}

// Network is a feed-forward network with ReLU hidden layers and a single
// linear output
type Network struct {
	Sizes  []int   `json:"sizes"`
	Layers []Layer `json:"layers"`
}

// Ensure Network implements Policy
var _ Policy = (*Network)(nil)

// NewRandom builds a network with the given layer sizes, every weight and
// bias drawn uniformly from [-1, 1]
func NewRandom(rnd random.Random, sizes ...int) *Network {
	if len(sizes) < 2 || sizes[len(sizes)-1] != 1 {
		panic(fmt.Errorf("%w: network sizes %v", model.ErrUnreachableState, sizes))
	}
	n := &Network{Sizes: append([]int(nil), sizes...)}
	for l := 1; l < len(sizes); l++ {
		layer := Layer{
			Weights: make([][]float64, sizes[l]),
			Biases:  make([]float64, sizes[l]),
		}
		for o := range layer.Weights {
			layer.Weights[o] = make([]float64, sizes[l-1])
			for i := range layer.Weights[o] {
				layer.Weights[o][i] = uniform(rnd, 1)
			}
			layer.Biases[o] = uniform(rnd, 1)
		}
		n.Layers = append(n.Layers, layer)
	}
	return n
}

// ForBoard builds a random network sized for a width×height board
func ForBoard(rnd random.Random, width, height int) *Network {
	cells := width * height
	return NewRandom(rnd, cells, cells, 1)
}

// Inputs returns the feature vector length the network expects
func (n *Network) Inputs() int {
	return n.Sizes[0]
}

// Score runs a forward pass
func (n *Network) Score(features []float64) float64 {
	if len(features) != n.Inputs() {
		panic(fmt.Errorf("%w: %d features for a network with %d inputs",
			model.ErrUnreachableState, len(features), n.Inputs()))
	}
	activations := features
	last := len(n.Layers) - 1
	for l, layer := range n.Layers {
		out := make([]float64, len(layer.Biases))
		for o, weights := range layer.Weights {
			sum := layer.Biases[o]
			for i, w := range weights {
				sum += w * activations[i]
			}
			if l != last && sum < 0 {
				sum = 0
			}
			out[o] = sum
		}
		activations = out
	}
	return activations[0]
}

// Mutate nudges each parameter with probability ratio by a uniform step in
// [-ratio, ratio]
func (n *Network) Mutate(ratio float64, rnd random.Random) Policy {
	c := n.clone()
	c.each(func(p *float64) {
		if rnd.Float64() < ratio {
			*p += uniform(rnd, ratio)
		}
	})
	return c
}

// Clone returns a deep copy
func (n *Network) Clone() Policy {
	return n.clone()
}

// Parameters returns the number of weights and biases
func (n *Network) Parameters() int {
	count := 0
	n.each(func(*float64) { count++ })
	return count
}

func (n *Network) clone() *Network {
	c := &Network{
		Sizes:  append([]int(nil), n.Sizes...),
		Layers: make([]Layer, len(n.Layers)),
	}
	for l, layer := range n.Layers {
		weights := make([][]float64, len(layer.Weights))
		for o := range layer.Weights {
			weights[o] = append([]float64(nil), layer.Weights[o]...)
		}
		c.Layers[l] = Layer{Weights: weights, Biases: append([]float64(nil), layer.Biases...)}
	}
	return c
}

// each visits every parameter in a fixed order: per layer, per output, the
// weights then the bias
func (n *Network) each(fn func(*float64)) {
	for l := range n.Layers {
		layer := &n.Layers[l]
		for o := range layer.Weights {
			for i := range layer.Weights[o] {
				fn(&layer.Weights[o][i])
			}
			fn(&layer.Biases[o])
		}
	}
}

// uniform draws from [-scale, scale)
func uniform(rnd random.Random, scale float64) float64 {
	return (rnd.Float64()*2 - 1) * scale
}

// Load decodes a saved network and checks its shape
func Load(data []byte) (*Network, error) {
	var n Network
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedSave, err)
	}
	if err := n.validate(); err != nil {
		return nil, err
	}
	return &n, nil
}

func (n *Network) validate() error {
	if len(n.Sizes) < 2 || n.Sizes[len(n.Sizes)-1] != 1 {
		return fmt.Errorf("%w: bad layer sizes %v", model.ErrMalformedSave, n.Sizes)
	}
	if len(n.Layers) != len(n.Sizes)-1 {
		return fmt.Errorf("%w: %d layers for %d sizes", model.ErrMalformedSave, len(n.Layers), len(n.Sizes))
	}
	for l, layer := range n.Layers {
		in, out := n.Sizes[l], n.Sizes[l+1]
		if in <= 0 || len(layer.Weights) != out || len(layer.Biases) != out {
			return fmt.Errorf("%w: layer %d is not %dx%d", model.ErrMalformedSave, l, out, in)
		}
		for _, row := range layer.Weights {
			if len(row) != in {
				return fmt.Errorf("%w: layer %d is not %dx%d", model.ErrMalformedSave, l, out, in)
			}
		}
	}
	return nil
}
