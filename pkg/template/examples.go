// examples.go - Sample files written by `gocard init`.
package template

// ExamplePresets returns a sample presets.toml that adds two variants.
func ExamplePresets() string {
	return `# Extra variants. Entries with a built-in ID replace that variant.
[pack]
name = "Starter presets"
version = "1.0"
author = "GoCard"
description = "Two sample looks on top of the built-in table"

[[variant]]
id = 101
name = "mint-split"
description = "split background with a price chip"

[variant.background]
kind = "split"
primary = "lighten:0.85"
secondary = "darken:0.25"

[variant.product]
anchor = "center"

[variant.product.shadow]
alpha = 90
blur = 20
offset_x = 20
offset_y = 25

[variant.text]
start = 40
gap = 16

[[variant.block]]
role = "title"
size = 76
color = "auto"
align = "center"
max_width = 760
pad_x = 36
pad_y = 18

[variant.block.chip]
fill = "darken:0.45/220"
radius = 24

[[variant.block]]
role = "subtitle"
color = "black"
align = "center"
max_width = 700

[[variant.block]]
role = "price"
color = "white"
align = "center"
placement = "from-bottom"
y = 60
pad_x = 30
pad_y = 12

[variant.block.chip]
fill = "#e63946"
radius = 18

[[variant]]
id = 102
name = "bokeh-glow"
description = "dense bokeh with a light glow around the product"

[variant.background]
kind = "bokeh"
primary = "darken:0.6"
circles = 60
min_radius = 20
max_radius = 80

[variant.product]
anchor = "center-offset"
offset_y = 60

[variant.product.shadow]
alpha = 160
blur = 35
offset_x = -30
offset_y = -30
tint = "lighten:0.6"

[variant.text]
start = 60
gap = 20
stop_at_product = true
product_margin = 20

[[variant.block]]
role = "title"
color = "white"
upper = true
align = "center"
max_width = 800

[[variant.block]]
role = "subtitle"
color = "lighten:0.7"
align = "center"
max_width = 700
`
}

// ExampleProductConfig returns a sample product_config.json.
func ExampleProductConfig() string {
	return `{
  "DOG_BOWL": {
    "titles": ["DOG BOWL (RED)", "Perfect Dog Bowl"],
    "subtitles": ["Non-slip design"]
  },
  "MUG": {
    "titles": ["COFFEE MUG"],
    "subtitles": ["Enjoy your hot drinks"]
  },
  "UNKNOWN": {
    "titles": ["My Product"],
    "subtitles": ["No info"]
  }
}
`
}
