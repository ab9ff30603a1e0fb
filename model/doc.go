// Package model composes configured peaks into an evaluable sum.
//
// Every shape parameter becomes a model parameter named
// <shape>_<param>_<key>, for example gaussian_center_1. A parameter is free
// (adjusted by the solver), fixed, or tied to other parameters by an
// arithmetic expression such as "2 * gaussian_fwhmg_1". Expressions are
// compiled once by [Compose] and evaluated in dependency order on every
// model evaluation.
package model
