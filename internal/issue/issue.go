// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"

	"github.com/charmbracelet/glamour"

	"github.com/invowk/taskconf/internal/fileglob"
	"github.com/invowk/taskconf/pkg/taskconf"
)

type Id int

const (
	UnrecognizedFormatId Id = iota + 1
	ParseFailureId
	FactoryFailureId
	InvalidContributionId
	PatternResolutionId
	ConfigLoadFailedId
	NoFilesMatchedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id    Id          // ID used to lookup the issue
	mdMsg MarkdownMsg // Markdown text that will be rendered
	links []HttpLink  // rendered under "See also"
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the issue as terminal Markdown. stylePath is a glamour style name
// ("dark", "light", "notty") or a path to a JSON style file.
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.links) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.links {
			extraMd += "\n- <" + string(link) + ">"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	unrecognizedFormatIssue = &Issue{
		id: UnrecognizedFormatId,
		mdMsg: `
# Unrecognized config file format!

A pattern matched a file whose extension has no registered format. Nothing was
loaded: the extension check runs before any file is read.

## Supported extensions
` + "`.yaml` `.yml` `.json` `.toml` `.cue` `.hcl` `.star`" + `

## Things you can try:
- Exclude the file with a negated pattern:
~~~
$ taskconf load 'config/*' '!config/README.md'
~~~

- Narrow the pattern to the formats you use:
~~~
$ taskconf load 'config/*.{yaml,json}'
~~~

- List the registered formats:
~~~
$ taskconf formats
~~~`,
	}

	parseFailureIssue = &Issue{
		id: ParseFailureId,
		mdMsg: `
# Failed to parse a config file!

The file could not be read or its content is not valid for its format.

## Things you can try:
- Check the syntax near the position reported above
- Make sure a JSON file holds exactly one value
- Make sure a CUE file is concrete (no open ` + "`string`" + ` or ` + "`int`" + ` fields)
- Check the file is smaller than the maximum file size (5MB)`,
	}

	factoryFailureIssue = &Issue{
		id: FactoryFailureId,
		mdMsg: `
# A config factory failed!

The file is a factory (a Starlark ` + "`config(host, data)`" + ` function, or a CUE/HCL file
reading ` + "`host`" + ` or ` + "`data`" + `) and evaluating it raised an error.

## Things you can try:
- Read the backtrace above to find the failing line
- Check that the shared data holds the keys the factory reads:
~~~
$ taskconf load --debug --data build.yaml 'config/*'
~~~

- Remember that earlier factories may have changed the shared data`,
	}

	invalidContributionIssue = &Issue{
		id: InvalidContributionId,
		mdMsg: `
# Config file did not produce a mapping!

Every file must contribute a mapping (top-level keys) so it can be merged.

## Things you can try:
- Wrap the value under a key:
~~~yaml
default:
  - jshint
  - concat
~~~

- Or store non-mapping files under their file name:
~~~
$ taskconf load --fallback-naming 'tasks/*'
~~~`,
	}

	patternResolutionIssue = &Issue{
		id: PatternResolutionId,
		mdMsg: `
# Invalid file pattern!

A glob pattern could not be expanded.

## Pattern syntax
- ` + "`*`" + ` matches any sequence within a path segment
- ` + "`**`" + ` matches any number of directories
- ` + "`{a,b}`" + ` matches either alternative
- ` + "`[abc]`" + ` matches one character; brackets must be closed
- a leading ` + "`!`" + ` excludes files matched by earlier patterns`,
		links: []HttpLink{"https://github.com/bmatcuk/doublestar#patterns"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load taskconf settings!

The settings file could not be parsed or does not match the schema.

## Things you can try:
- Show where the settings file is expected:
~~~
$ taskconf config path
~~~

- Regenerate a default file:
~~~
$ taskconf config init
~~~

- Check the values against the schema:
~~~cue
patterns: ["config/*.yaml"]
output:   "yaml" // or "json", "toml"
ui: color_scheme: "auto" // or "dark", "light"
~~~`,
	}

	noFilesMatchedIssue = &Issue{
		id: NoFilesMatchedId,
		mdMsg: `
# No config files matched!

The patterns resolved to no files, so the result is an empty mapping.

## Things you can try:
- Check the working directory (` + "`--cwd`" + `) the patterns are relative to
- Quote patterns so your shell does not expand them first:
~~~
$ taskconf load 'config/**/*.yaml'
~~~`,
	}

	issues = map[Id]*Issue{
		unrecognizedFormatIssue.Id():  unrecognizedFormatIssue,
		parseFailureIssue.Id():        parseFailureIssue,
		factoryFailureIssue.Id():      factoryFailureIssue,
		invalidContributionIssue.Id(): invalidContributionIssue,
		patternResolutionIssue.Id():   patternResolutionIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		noFilesMatchedIssue.Id():      noFilesMatchedIssue,
	}
)

func Get(id Id) *Issue {
	return issues[id]
}

// ForError returns the issue describing a loader error, or nil when err is not one.
func ForError(err error) *Issue {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, taskconf.ErrUnrecognizedFormat):
		return Get(UnrecognizedFormatId)
	case errors.Is(err, taskconf.ErrFactoryFailure):
		return Get(FactoryFailureId)
	case errors.Is(err, taskconf.ErrInvalidContribution):
		return Get(InvalidContributionId)
	case errors.Is(err, taskconf.ErrParseFailure):
		return Get(ParseFailureId)
	case errors.Is(err, taskconf.ErrResolutionFailure), errors.Is(err, fileglob.ErrInvalidPattern):
		return Get(PatternResolutionId)
	default:
		return nil
	}
}
