// Package config turns a declarative fit description into a validated
// [Configuration].
//
// A description is a JSON, YAML or TOML document. Its blocks may sit at the
// top level or below a "fitting" key:
//
//	fitting:
//	  parameters:
//	    minimizer: {nan_policy: propagate}
//	    optimizer: {method: leastsq, max_nfev: 1000}
//	    conf_interval: {method: covariance, sigmas: [1, 2, 3]}
//	    report: {min_correl: 0.1}
//	  peaks:
//	    "1":
//	      gaussian:
//	        amplitude: {value: 1, min: 0, max: 10, vary: true}
//	        center:    {value: 0, min: -1, max: 1}
//	        fwhmg:     {expr: "lorentzian_fwhml_2 * 1.5"}
//	    "2":
//	      lorentzian: {...}
//	settings:
//	  energy_start: 0
//	  oversampling: true
//
// [Load] decodes a file into a generic document; [Validate] checks it and
// builds the Configuration. Validation is eager: missing required blocks and
// inconsistent bounds are reported before any model is composed.
package config
