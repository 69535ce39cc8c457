/*Package svevidence extracts structural-variant evidence from a stream of
  aligned reads. It does not call variants; it only sorts records into two
  sets that downstream callers consume.

  Discordant pairs: a record is discordant when none of the flags in
  Opts.DiscordantMask|Opts.NoiseMask is set. With the default masks, that
  is a primary, mapped record with a mapped mate that the aligner did not
  mark as a proper pair.

  Split reads: a record is a split read when its SA tag lists at most
  Opts.MaxSupplementary entries, and the first entry and the record itself
  each cover at least Opts.MinNonOverlap query bases that the other does
  not.

  Query extents: both alignments are compared in fragment coordinates. A
  reverse-strand CIGAR is reversed first, so that leading clips always
  count from the 5' end of the read. The extent of a CIGAR starts after
  the leading soft and hard clips and covers the M, I, = and X ops:

    10S40M   forward  -> [10,50)
    40M10S   forward  -> [0,40)
    40M10S   reverse  -> [10,50)

  For the first two, the overlap is 30 bases and each alignment covers 10
  bases alone, so the record is a split read only if Opts.MinNonOverlap <=
  10.

  Records written to the split sink get "_1" (read 1) or "_2" (otherwise)
  appended to their names, so that both ends of a fragment can be told
  apart after the output is sorted by name.
*/
package svevidence
