// Package mocap owns the motion-capture recording model and the adaptive
// marker-weighting engine.
//
// Responsibilities: marker-position tensors and their shape invariants,
// frame-rate thinning, fixed-length resampling, per-marker displacement
// statistics, and derivation of the per-marker weight vector that biases a
// downstream distance metric toward the markers that move the most.
// Key types: Recording, Positions, MarkerSelector, WeightMode, Weights.
//
// Dependency rule: this package performs no file or network I/O. Persisted
// weights arrive through the WeightTable capability injected into a
// WeightStore.
package mocap
