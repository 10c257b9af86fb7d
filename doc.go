// Package filesniff identifies the content format of bioinformatics files
// by trial-parsing them against an ordered list of format testers.
//
// Inputs can be local paths, http(s) or s3 URLs, or "-" for standard input.
// Each input is turned into a seekable file in a run workspace: remote
// inputs are downloaded, gzip and bzip2 inputs are decoded into a bounded
// sample, and standard input is always spooled. Block-gzip (BGZF) inputs
// are never decoded since the BAM and BCF testers read them as they are.
//
// # Basic Usage
//
//	c, err := filesniff.New(filesniff.WithRecordBudget(1000))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	res, err := c.Classify(ctx, "reads.fq.gz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Label, res.ID)            // FASTQ http://edamontology.org/format_1930
//	fmt.Println(res.Container.Compression)    // gzip
//
// # Tester Order
//
// Testers are tried in order and the first match wins. The empty-file
// tester always runs first. The default order is
//
//	bam, bcf, cram, sam, vcf, gff3, gtf, bed, fastq, fasta
//
// and can be replaced with a YAML document (see [Order]). Entries ending in
// .cwl are CWL tool descriptors run through docker by package exttool; they
// need the whole input, so compressed inputs must then be read in full
// ([WithFullRead]) or left compressed ([WithSkipDecompression]).
//
// # Failures
//
// A tester that does not match, fails or panics never stops dispatch; its
// reason is recorded in [Result.Failures]. Input errors such as a missing
// file stop [Classifier.ClassifyAll] unless [WithKeepGoing] is set.
// Configuration errors ([IsConfigError]) always stop it.
//
// # Configuration
//
// [GetConfig] reads BEAVER_FILESNIFF_* environment variables; [WithPrefix]
// selects another prefix.
package filesniff
