// Package summarize runs the summary pipeline: trim the input, build the
// prompt, call the inference backend and trim the output.
//
// The pipeline depends only on provider.Client, so any backend registered
// with the provider package can serve it:
//
//	client, err := provider.New("local", cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	s := summarize.New(client)
//	res, err := s.Summarize(ctx, summarize.Request{
//	    Text:           text,
//	    Style:          prompt.Bullet,
//	    MaxOutputWords: 200,
//	    OutputTrim:     truncate.Sentence,
//	})
package summarize
