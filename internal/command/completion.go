// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/fxctl/internal/catalog"
	"github.com/staranto/fxctl/internal/meta"
)

// @CODES@ is replaced with the catalog codes when the script is emitted.
const bashCompletionScript = `# bash completion for fxctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_fxctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "greet currencies cq convert batch completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--color -c --filter -f --output -o --sort -s --titles -t"
    local codes="@CODES@"

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
        return 0
    fi

    case "$cmd" in
        greet)
            return 0
            ;;
        currencies|cq)
            local opts="$common"
            ;;
        convert)
            if [[ "$cur" != -* && ${COMP_CWORD} -le 3 ]]; then
                COMPREPLY=( $(compgen -W "$codes" -- "${cur^^}") )
                return 0
            fi
            local opts="--output -o --precision -p"
            ;;
        batch)
            if [[ "$cur" != -* ]]; then
                COMPREPLY=( $(compgen -f -- "$cur") )
                return 0
            fi
            local opts="$common --precision -p --workers -w --stats"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _fxctl fxctl
`

const zshCompletionScript = `#compdef fxctl

_fxctl() {
  local -a cmds
  cmds=(
    'greet:print a greeting'
    'currencies:list supported currencies'
    'cq:list supported currencies'
    'convert:convert an amount between currencies'
    'batch:run many conversions concurrently'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)'
  '(-s --sort)'{-s,--sort}'[sort columns]:columns'
  '(-t --titles)'{-t,--titles}'[show titles]'
  )

  local -a codes
  codes=(@CODES@)

  if (( CURRENT == 2 )); then
    _describe -t commands 'fxctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    greet)
      _arguments '1:name:'
      ;;
    currencies|cq)
      _arguments -C $common
      ;;
    convert)
      _arguments -C \
        '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)' \
        '(-p --precision)'{-p,--precision}'[decimal places]:precision' \
        "1:base:(${codes})" \
        "2:target:(${codes})" \
        '3:amount:'
      ;;
    batch)
      _arguments -C \
        $common \
        '(-p --precision)'{-p,--precision}'[decimal places]:precision' \
        '(-w --workers)'{-w,--workers}'[concurrent conversions]:workers' \
        '--stats[print cache statistics]' \
        '::file:_files'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _fxctl fxctl
`

// completionScript returns the script for shell with the currency codes
// filled in. An unknown shell returns "".
func completionScript(shell string) string {
	var script string
	switch shell {
	case "bash":
		script = bashCompletionScript
	case "zsh":
		script = zshCompletionScript
	default:
		return ""
	}
	return strings.ReplaceAll(script, "@CODES@", strings.Join(catalog.Codes(), " "))
}

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := cmd.Args().First()
	if shell == "" {
		// Try to detect from SHELL
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	script := completionScript(shell)
	if script == "" {
		fmt.Fprintln(ErrWriter(cmd), "usage: fxctl completion [bash|zsh]")
		return nil
	}
	fmt.Fprint(Writer(cmd), script)
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "fxctl completion [bash|zsh]",
		Action:    CompletionCommandAction,
		Meta:      meta,
	}).Build()
}
