// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import "github.com/js-arias/command"

func init() {
	app.Add(projectsGuide)
	app.Add(seqFilesGuide)
	app.Add(treeFilesGuide)
	app.Add(toolsGuide)
}

var projectsGuide = &command.Command{
	Usage: "projects",
	Short: "about project files",
	Long: `
TreeWeaver requires several files to read and process a phylogenetic
analysis. To reduce the burden of keeping track of many files, a single
project file is used to hold the reference of all files required in the
analysis. This guide explains the structure of the file, but most of the
time, the best and most secure way to edit or view this file is by using
treeweaver commands.

A project file is a tab-delimited file with the following fields:

	- dataset  for the kind of file
	- path     for the path of the file

Here is an example file:

	# treeweaver project files
	dataset	path
	sequences	sequences.fasta
	alignment	alignment.fasta
	model	model.tab
	tree	tree.nwk

The valid file types are:

- Sequences. Defined by the dataset keyword "sequences". This file contains
  the molecular sequences of the study in FASTA, FASTQ, PHYLIP, or NEXUS
  format. The recommended way to add sequences is by using the command
  'treeweaver seq add'.
- Alignments. Defined by the dataset keyword "alignment". This file contains
  the aligned sequences, all of the same length. The recommended way to
  build an alignment is by using the command 'treeweaver align'.
- Substitution models. Defined by the dataset keyword "model". This file
  contains the selected substitution model in the form of a tab-delimited
  file. The recommended way to select a model is by using the command
  'treeweaver model'.
- Phylogenetic trees. Defined by the dataset keyword "tree". This file
  contains the inferred tree in newick format. The recommended way to build
  a tree is by using the command 'treeweaver tree infer'.

The presence of the datasets defines the analysis stage of the project: a
project with only sequences is raw, with an alignment is aligned, with a
model is model-selected, and with a tree is finished. Editing a dataset
removes the datasets that depend on it, so the project is always
consistent: for example editing the sequences removes the alignment, the
model, and the tree.
	`,
}

var seqFilesGuide = &command.Command{
	Usage: "seq-files",
	Short: "about sequence files",
	Long: `
TreeWeaver reads and writes molecular sequences in several widely used
formats. The format of an input file is detected from the file extension:

	- .fasta, .fa, .fna, .faa  FASTA format
	- .fastq, .fq              FASTQ format
	- .phy, .phylip            PHYLIP format
	- .nex, .nexus, .nxs       NEXUS format

Files without a known extension are read as FASTA, the most common exchange
format. The same formats are available for export with the command
'treeweaver seq export'.

Sequence identifiers are free text, and can be as long as needed. As most
phylogenetic tools restrict the characters and the length of the sequence
names, TreeWeaver sanitizes the identifiers before calling an external
tool, and restores the original identifiers when reading the tool results.
The sanitization is automatic and never collapses two different
identifiers into one.

Sequences can use nucleotides or amino acids. The alphabet of a collection
is detected from the residues of the sequences and used to set up the
external tools, for example to select an amino acid model in a protein
dataset.
	`,
}

var treeFilesGuide = &command.Command{
	Usage: "tree-files",
	Short: "about tree files",
	Long: `
TreeWeaver stores phylogenetic trees in newick format, the parenthetical
notation used by most phylogenetic tools. For example:

	(Eulipotyphla:76,(Chiroptera:62,Carnivora:62)74:14);

Terminal names can be quoted with single quotes if they contain spaces or
other special characters. Branch lengths are given after a colon. A number
after the closing parenthesis of an internal node is read as the support
value of the node, the usual convention of tree inference tools for
bootstrap proportions. Comments enclosed in square brackets are ignored.

Trees with branch lengths in time units can also be imported from the
tab-delimited files used by the timetree package, using the flag --timetree
of the command 'treeweaver tree add'. In that case the branch lengths of
the resulting tree are in million years.

The terminals of a project tree must match the sequence identifiers of the
project, so tree editing commands keep the sequences and the tree
consistent. For example 'treeweaver tree prune' removes the pruned
terminals from the sequence and alignment files.
	`,
}

var toolsGuide = &command.Command{
	Usage: "tools",
	Short: "about external tools",
	Long: `
TreeWeaver delegates the heavy computations to well established external
programs, run as sub-processes:

	- mafft        multiple sequence alignment
	               <https://mafft.cbrc.jp/alignment/software/>
	- iqtree       substitution model selection (ModelFinder)
	               <http://www.iqtree.org/>
	- modeltest-ng substitution model selection
	               <https://github.com/ddarriba/modeltest>
	- raxml-ng     maximum likelihood tree inference
	               <https://github.com/amkozlov/raxml-ng>

The tools must be installed independently. By default they are searched in
the system PATH; a different location can be defined in the configuration
file or with environment variables.

The configuration is read from the file 'treeweaver.yaml' in the current
directory, or from the file indicated with the flag --config. All values
have usable defaults, so the file is optional. Example:

	mafft:
	  path: /opt/bio/mafft
	  threads: 8
	raxml:
	  threads: 4
	timeout: 2h
	seed: 12345
	bootstrap: 100
	journal: runs.db

Environment variables override the file values. The variables are
TREEWEAVER_MAFFT, TREEWEAVER_IQTREE, TREEWEAVER_MODELTEST, and
TREEWEAVER_RAXML for the tool paths, TREEWEAVER_THREADS,
TREEWEAVER_TIMEOUT, TREEWEAVER_SEED, TREEWEAVER_MODEL,
TREEWEAVER_BOOTSTRAP, TREEWEAVER_WORKDIR, TREEWEAVER_KEEP_WORKDIR,
TREEWEAVER_JOURNAL, and TREEWEAVER_LOG for the run parameters. The
variables can also be defined in a .env file in the current directory.

Every tool run is executed in a fresh working directory, removed at the end
of a successful run. Use the flag --keep, or the keep-workdir
configuration, to keep the directory for inspection. If a journal file is
defined, every run is recorded in an SQLite database that can be inspected
with the command 'treeweaver runs'.
	`,
}
