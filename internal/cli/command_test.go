package cli

import (
	"os"
	"slices"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cwbudde/spectrafit/internal/buildinfo"
)

var _ = Describe("spectrafit", func() {
	var ws *workspace

	BeforeEach(func() {
		ws = newWorkspace(GinkgoT().TempDir())

		old := buildinfo.Version
		buildinfo.Version = "0.9.1"
		DeferCleanup(func() { buildinfo.Version = old })
	})

	Context("version", func() {
		It("prints the version and exits cleanly", func() {
			for _, flag := range []string{"-v", "--version"} {
				out := execute("", flag)
				Expect(out.code).To(Equal(0))
				Expect(out.stdout).To(Equal("Currently used version is: 0.9.1\n"))
				Expect(out.stderr).To(BeEmpty())
			}
		})
	})

	Context("input formats", func() {
		DescribeTable("writes one JSON and three CSV files",
			func(name, content string) {
				input := ws.write(name, content)
				base := ws.path("result_" + name)

				out := execute("", ws.data, "-i", input, "-o", base)
				Expect(out.stderr).To(BeEmpty())
				Expect(out.code).To(Equal(0))

				jsonFiles, csvFiles := outputsOf(base)
				Expect(jsonFiles).To(HaveLen(1))
				Expect(csvFiles).To(HaveLen(3))
			},
			Entry("json", "input.json", jsonConfig),
			Entry("yml", "input.yml", yamlConfig),
			Entry("yaml", "input.yaml", yamlConfig),
			Entry("toml", "input.toml", tomlConfig),
		)

		It("rejects unsupported extensions with the exact message", func() {
			out := execute("", ws.data, "-i", "no_input.pp")
			Expect(out.code).To(Equal(1))
			Expect(out.stderr).To(Equal(
				"ERROR: Input file no_input.pp has not supported file format.\n" +
					"Supported fileformats are: '*.json', '*.yaml', and '*.toml'\n"))
		})

		It("reports a missing minimizer", func() {
			cfg := ws.write("input.json", `{"parameters": {"optimizer": {"method": "leastsq"}}, "peaks": {"1": {"constant": {"amplitude": 1}}}}`)
			out := execute("", ws.data, "-i", cfg, "-o", ws.path("x"))
			Expect(out.code).To(Equal(1))
			Expect(out.stderr).To(Equal("Missing 'minimizer' in 'parameters'!\n"))
		})

		It("reports a missing optimizer", func() {
			cfg := ws.write("input.json", `{"parameters": {"minimizer": {}}, "peaks": {"1": {"constant": {"amplitude": 1}}}}`)
			out := execute("", ws.data, "-i", cfg, "-o", ws.path("x"))
			Expect(out.code).To(Equal(1))
			Expect(out.stderr).To(Equal("Missing key 'optimizer' in 'parameters'!\n"))
		})
	})

	Context("energy range", func() {
		var input string

		BeforeEach(func() {
			input = ws.write("input.yaml", yamlConfig)
		})

		DescribeTable("clips the fitted axis",
			func(args []string, lo, hi float64) {
				base := ws.path("range")
				out := execute("", append([]string{ws.data, "-i", input, "-o", base}, args...)...)
				Expect(out.stderr).To(BeEmpty())
				Expect(out.code).To(Equal(0))

				energy := energyColumn(base + "_fit.csv")
				Expect(slices.Min(energy)).To(BeNumerically("~", lo, 1e-9))
				Expect(slices.Max(energy)).To(BeNumerically("~", hi, 1e-9))
			},
			Entry("e0", []string{"-e0", "0"}, 0.0, 10.0),
			Entry("e1", []string{"-e1", "5"}, -5.0, 5.0),
			Entry("e0 and e1", []string{"-e0", "0", "-e1", "5"}, 0.0, 5.0),
			Entry("e0 and e1 oversampled", []string{"-e0", "0", "-e1", "5", "--oversampling"}, 0.0, 5.0),
			Entry("long names", []string{"--energy_start", "1", "--energy_stop", "4"}, 1.0, 4.0),
			Entry("hermite oversampled", []string{"-e0", "0", "-e1", "5", "-ov", "--interpolation", "hermite"}, 0.0, 5.0),
		)

		It("oversamples by the default factor", func() {
			plain := ws.path("plain")
			dense := ws.path("dense")
			Expect(execute("", ws.data, "-i", input, "-o", plain, "-e0", "0", "-e1", "5").code).To(Equal(0))
			Expect(execute("", ws.data, "-i", input, "-o", dense, "-e0", "0", "-e1", "5", "-ov").code).To(Equal(0))

			Expect(len(energyColumn(dense + "_fit.csv"))).To(Equal(5 * len(energyColumn(plain+"_fit.csv"))))
		})

		It("interpolates the oversampled grid with the selected mode", func() {
			linear := ws.path("linear")
			hermite := ws.path("hermite")
			Expect(execute("", ws.data, "-i", input, "-o", linear, "-ov").code).To(Equal(0))
			Expect(execute("", ws.data, "-i", input, "-o", hermite, "-ov", "-ip", "hermite").code).To(Equal(0))

			a, b := readCSV(linear+"_fit.csv"), readCSV(hermite+"_fit.csv")
			Expect(b).To(HaveLen(len(a)))
			differ := 0
			for i := 1; i < len(a); i++ {
				Expect(b[i][0]).To(Equal(a[i][0]), "same energy grid")
				if a[i][1] != b[i][1] {
					differ++
				}
			}
			Expect(differ).To(BeNumerically(">", 0), "hermite changes the interpolated intensities")
		})

		It("rejects an inverted range", func() {
			out := execute("", ws.data, "-i", input, "-o", ws.path("bad"), "-e0", "5", "-e1", "1")
			Expect(out.code).To(Equal(1))
			Expect(out.stderr).To(HavePrefix("ERROR: "))
			_, err := os.Stat(ws.path("bad_fit.csv"))
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("rejects a range without samples", func() {
			out := execute("", ws.data, "-i", input, "-o", ws.path("empty"), "-e0", "20", "-e1", "30")
			Expect(out.code).To(Equal(1))
			Expect(out.stderr).To(HavePrefix("ERROR (data): "))
			Expect(out.stderr).To(ContainSubstring("no samples in energy range"))
		})
	})

	Context("settings layering", func() {
		It("takes the range from the settings block", func() {
			input := ws.write("input.yaml", withSettings(yamlConfig, "  energy_start: 1\n  energy_stop: 6\n"))
			base := ws.path("settings")
			Expect(execute("", ws.data, "-i", input, "-o", base).code).To(Equal(0))

			energy := energyColumn(base + "_fit.csv")
			Expect(slices.Min(energy)).To(BeNumerically("~", 1, 1e-9))
			Expect(slices.Max(energy)).To(BeNumerically("~", 6, 1e-9))
		})

		It("lets the environment override the settings block and flags override both", func() {
			GinkgoT().Setenv("SPECTRAFIT_ENERGY_START", "2")
			input := ws.write("input.yaml", withSettings(yamlConfig, "  energy_start: 1\n"))

			base := ws.path("env")
			Expect(execute("", ws.data, "-i", input, "-o", base).code).To(Equal(0))
			Expect(slices.Min(energyColumn(base + "_fit.csv"))).To(BeNumerically("~", 2, 1e-9))

			base = ws.path("flag")
			Expect(execute("", ws.data, "-i", input, "-o", base, "-e0", "3").code).To(Equal(0))
			Expect(slices.Min(energyColumn(base + "_fit.csv"))).To(BeNumerically("~", 3, 1e-9))
		})

		It("reads the interpolation from the settings block and the environment", func() {
			input := ws.write("input.yaml", withSettings(yamlConfig, "  oversampling: true\n  interpolation: cubic\n"))
			out := execute("", ws.data, "-i", input, "-o", ws.path("bad"))
			Expect(out.code).To(Equal(1))
			Expect(out.stderr).To(HavePrefix("ERROR: settings: "))
			Expect(out.stderr).To(ContainSubstring(`"cubic"`))

			GinkgoT().Setenv("SPECTRAFIT_INTERPOLATION", "hermite")
			base := ws.path("env_hermite")
			Expect(execute("", ws.data, "-i", input, "-o", base).code).To(Equal(0))
			Expect(energyColumn(base + "_fit.csv")).To(HaveLen(5 * 151))
		})

		It("reads the output basename from the settings block", func() {
			base := ws.path("from_settings")
			input := ws.write("input.yaml", withSettings(yamlConfig, "  outfile: "+base+"\n"))
			Expect(execute("", ws.data, "-i", input).code).To(Equal(0))

			jsonFiles, csvFiles := outputsOf(base)
			Expect(jsonFiles).To(HaveLen(1))
			Expect(csvFiles).To(HaveLen(3))
		})
	})

	Context("confidence intervals", func() {
		It("adds the section only when requested", func() {
			plain := ws.write("plain.yaml", yamlConfig)
			withInterval := ws.write("ci.yaml", withCI(yamlConfig))

			Expect(execute("", ws.data, "-i", plain, "-o", ws.path("plain")).code).To(Equal(0))
			Expect(execute("", ws.data, "-i", withInterval, "-o", ws.path("ci")).code).To(Equal(0))

			Expect(readSummary(ws.path("plain_summary.json"))).NotTo(HaveKey("confidence_intervals"))

			summary := readSummary(ws.path("ci_summary.json"))
			Expect(summary).To(HaveKey("confidence_intervals"))
			ci := summary["confidence_intervals"].(map[string]any)
			Expect(ci["method"]).To(Equal("covariance"))
			Expect(ci["parameters"]).To(HaveKey("gaussian_center_1"))

			header := readCSV(ws.path("ci_parameters.csv"))[0]
			Expect(header).To(ContainElements("ci_lower_1sigma", "ci_upper_2sigma"))
		})
	})

	Context("outputs", func() {
		var input, base string

		BeforeEach(func() {
			input = ws.write("input.yaml", yamlConfig)
			base = ws.path("existing")
			Expect(execute("", ws.data, "-i", input, "-o", base).code).To(Equal(0))
			Expect(os.WriteFile(base+"_fit.csv", []byte("sentinel\n"), 0o644)).To(Succeed())
		})

		It("keeps existing files when the prompt is declined", func() {
			out := execute("n\n", ws.data, "-i", input, "-o", base)
			Expect(out.code).To(Equal(0))
			Expect(out.stderr).To(BeEmpty())
			Expect(out.stdout).To(ContainSubstring("Overwrite?"))
			Expect(out.stdout).To(ContainSubstring(declinedNotice))

			data, err := os.ReadFile(base + "_fit.csv")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("sentinel\n"))
		})

		It("treats closed input as a decline", func() {
			out := execute("", ws.data, "-i", input, "-o", base)
			Expect(out.code).To(Equal(0))
			Expect(out.stdout).To(ContainSubstring(declinedNotice))
		})

		It("overwrites after confirmation", func() {
			out := execute("yes\n", ws.data, "-i", input, "-o", base)
			Expect(out.code).To(Equal(0))
			Expect(readCSV(base + "_fit.csv")[0]).To(Equal([]string{"energy", "intensity", "fit", "residual"}))
		})

		It("overwrites without asking with -y", func() {
			out := execute("", ws.data, "-i", input, "-o", base, "-y")
			Expect(out.code).To(Equal(0))
			Expect(out.stdout).NotTo(ContainSubstring("Overwrite?"))
			Expect(readCSV(base + "_fit.csv")[0]).To(HaveLen(4))
		})

		It("describes the run in the summary", func() {
			summary := readSummary(base + "_summary.json")
			meta := summary["metadata"].(map[string]any)
			Expect(meta["version"]).To(Equal("0.9.1"))
			Expect(meta["data_file"]).To(Equal("test_data.csv"))
			Expect(meta["run_id"]).To(HaveLen(36))
			Expect(meta["timestamp"]).To(Equal("2026-01-02T03:04:05Z"))

			fit := summary["fit"].(map[string]any)
			Expect(fit["success"]).To(BeTrue())
			stats := summary["statistics"].(map[string]any)
			Expect(stats["ndata"]).To(BeNumerically("==", 151))
			Expect(stats["rsquared"]).To(BeNumerically(">", 0.99))
		})

		It("writes the metrics file", func() {
			metrics := ws.path("run.prom")
			out := execute("", ws.data, "-i", input, "-o", ws.path("m"), "--metrics-file", metrics)
			Expect(out.code).To(Equal(0))

			data, err := os.ReadFile(metrics)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`spectrafit_runs_total{status="success"} 1`))
		})

		It("counts a solve that runs out of evaluations as failed", func() {
			starved := ws.write("starved.yaml", strings.Replace(yamlConfig, "max_nfev: 2000", "max_nfev: 1", 1))
			metrics := ws.path("failed.prom")
			out := execute("", ws.data, "-i", starved, "-o", ws.path("f"), "--metrics-file", metrics)
			Expect(out.code).To(Equal(1))
			Expect(out.stderr).To(HavePrefix("ERROR (fit): "))

			data, err := os.ReadFile(metrics)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`spectrafit_runs_total{status="failed"} 1`))
			Expect(string(data)).NotTo(ContainSubstring(`status="error"`))
		})
	})

	Context("peak order", func() {
		DescribeTable("follows the declaration order of the peaks",
			func(name, content string) {
				input := ws.write(name, content)
				base := ws.path("order_" + name)
				out := execute("", ws.data, "-i", input, "-o", base)
				Expect(out.stderr).To(BeEmpty())
				Expect(out.code).To(Equal(0))

				Expect(readCSV(base + "_components.csv")[0]).To(Equal(
					[]string{"energy", "gaussian_zeta", "lorentzian_alpha", "constant_omega"}))
			},
			Entry("json", "input.json", strings.NewReplacer(
				`"1": {"gaussian"`, `"zeta": {"gaussian"`,
				`"2": {"lorentzian"`, `"alpha": {"lorentzian"`,
				`"3": {"constant"`, `"omega": {"constant"`,
			).Replace(jsonConfig)),
			Entry("yaml", "input.yaml", strings.NewReplacer(
				"    1:\n", "    zeta:\n",
				"    2:\n", "    alpha:\n",
				"    3:\n", "    omega:\n",
			).Replace(yamlConfig)),
			Entry("toml", "input.toml", strings.NewReplacer(
				"[peaks.1.", "[peaks.zeta.",
				"[peaks.2.", "[peaks.alpha.",
				"[peaks.3.", "[peaks.omega.",
			).Replace(tomlConfig)),
		)
	})

	Context("all shapes", func() {
		It("converges with every registered shape", func() {
			input := ws.write("all.yaml", allShapesConfig)
			base := ws.path("all")
			out := execute("", ws.data, "-i", input, "-o", base)
			Expect(out.stderr).To(BeEmpty())
			Expect(out.code).To(Equal(0))

			header := readCSV(base + "_components.csv")[0]
			Expect(header).To(HaveLen(13))
			Expect(header).To(ContainElements("gaussian_1", "log_12", "heaviside_10"))
		})
	})

	Context("usage errors", func() {
		It("requires a data file", func() {
			out := execute("", "-i", ws.write("input.yaml", yamlConfig))
			Expect(out.code).To(Equal(1))
			Expect(out.stderr).To(ContainSubstring("DATA"))
		})

		It("requires an input file", func() {
			out := execute("", ws.data)
			Expect(out.code).To(Equal(1))
			Expect(out.stderr).To(ContainSubstring("-i INPUT"))
		})

		It("reports a missing data file", func() {
			out := execute("", ws.path("missing.csv"), "-i", ws.write("input.yaml", yamlConfig), "-o", ws.path("x"))
			Expect(out.code).To(Equal(1))
			Expect(out.stderr).To(HavePrefix("ERROR (io): "))
			Expect(out.stderr).To(ContainSubstring("missing.csv"))
		})

		It("reports an unknown method before fitting", func() {
			cfg := ws.write("input.yaml", strings.Replace(yamlConfig, "method: leastsq", "method: leastsquare", 1))
			out := execute("", ws.data, "-i", cfg, "-o", ws.path("x"))
			Expect(out.code).To(Equal(1))
			Expect(out.stderr).To(ContainSubstring("leastsquare"))
		})
	})
})
