// Package transcript models recognition output and consolidates it.
//
// A Unit is one span's recognition result in absolute recording time. Merge
// folds an ordered Unit sequence into Chunks using gap and duration thresholds;
// the fold is expressed as Step/Flush over an explicit MergeState so the state
// machine can be driven one unit at a time. The package also owns the
// transcript file format and hypothesis text assembly for WER scoring.
package transcript
