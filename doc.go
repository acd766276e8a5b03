/*
Package fixpoint allows to build and run lines that convert floating-point
signal into saturated fixed-point samples.

Concept

The signal processing in this package has exactly three stages:

    Source - the origin of signal;
    Processor - the manipulator of the signal;
    Sink - the destination of signal.

Every stage is running in its own goroutine and stages are connected with
channels. It is inspired with the pipeline pattern explained in the go blog
https://blog.golang.org/pipelines.

Components

Each stage is implemented by components. For example, wav.Source reads
full-scale samples from wav file and convert.Int32 rounds and saturates them
into int32. Components are instantiated with allocator functions:

    SourceAllocatorFunc
    ProcessorAllocatorFunc
    SinkAllocatorFunc

Allocator functions return component structures and pre-allocate all
required resources. It reduces number of allocations during the run.

Component structures consist of the run closure, start and flush hooks.
Flush hook is triggered when the line is done or interrupted by error or
cancellation, it is called only for started components.

Several processors are combined into one with Chain:

    l := fixpoint.Line[byte, byte]{
        Source:    source,
        Processor: fixpoint.Chain(
            scrambler.Processor(0x8A, 0x7F, 7),
            scrambler.DescramblerProcessor(0x8A, 0x7F, 7),
        ),
        Sink: sink,
    }

Execution

Line is started with Run and the result is awaited with Wait:

    r, err := l.Run(ctx, bufferSize)
    if err != nil {
        return err
    }
    err = r.Wait()

Run will asynchronously run all components until either any of the
following things happen: the source is done; the context is done; an error
in any of the components occured.
*/
package fixpoint
