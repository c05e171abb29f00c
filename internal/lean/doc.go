// Package lean implements the host engine's data-folder conventions for the
// quiver/insidertrading dataset: where point-in-time and universe files live,
// the metadata the engine's plugin contract asks for (default resolution,
// data time zone, sparseness, mapping), and readers for both file shapes.
//
// The engine's subscription and resolution framework itself is an external
// collaborator; this package only produces and consumes its formats.
package lean
