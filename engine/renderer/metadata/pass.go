package metadata

/**
 * @brief The point in the frame at which a pass is injected. Values carry
 * gaps so externally registered passes can slot between the built-ins;
 * ties are broken by stable registration order.
 */
type RenderPassEvent int

const (
	PASS_EVENT_BEFORE_RENDERING       RenderPassEvent = 0
	PASS_EVENT_BEFORE_SHADOWS         RenderPassEvent = 50
	PASS_EVENT_BEFORE_PRE_PASSES      RenderPassEvent = 100
	PASS_EVENT_AFTER_PRE_PASSES       RenderPassEvent = 150
	PASS_EVENT_BEFORE_OPAQUES         RenderPassEvent = 200
	PASS_EVENT_AFTER_OPAQUES          RenderPassEvent = 250
	PASS_EVENT_BEFORE_SKYBOX          RenderPassEvent = 300
	PASS_EVENT_AFTER_SKYBOX           RenderPassEvent = 350
	PASS_EVENT_BEFORE_TRANSPARENTS    RenderPassEvent = 400
	PASS_EVENT_AFTER_TRANSPARENTS     RenderPassEvent = 450
	PASS_EVENT_BEFORE_POST_PROCESSING RenderPassEvent = 500
	PASS_EVENT_AFTER_POST_PROCESSING  RenderPassEvent = 550
	PASS_EVENT_AFTER_RENDERING        RenderPassEvent = 600
)

/** @brief Bit flags for the transient inputs a pass declares it reads. */
type PassInputFlag uint8

const (
	PASS_INPUT_NONE    PassInputFlag = 0x0
	PASS_INPUT_DEPTH   PassInputFlag = 0x1
	PASS_INPUT_NORMALS PassInputFlag = 0x2
	PASS_INPUT_COLOR   PassInputFlag = 0x4
	PASS_INPUT_MOTION  PassInputFlag = 0x8
)

func (f PassInputFlag) Has(flag PassInputFlag) bool {
	return f&flag != 0
}

/**
 * @brief Everything the scheduler needs to know about a unit of rendering
 * work without looking at its body. Built-in passes create theirs at
 * renderer construction; external passes at registration time. Declarations
 * live for the whole session and are re-read every frame.
 */
type PassDeclaration struct {
	/** @brief The Name of the pass, for logs and plan dumps. */
	Name string
	/** @brief When in the frame the pass runs. */
	Event RenderPassEvent
	/** @brief The transient inputs the pass samples. */
	Inputs PassInputFlag
	/**
	 * @brief Forces the intermediate colour texture into existence even when
	 * nothing else needs it. Set by passes that cannot tolerate rendering
	 * into a vertically-flipped backbuffer.
	 */
	ForcesColorTextureCreation bool
}

/**
 * @brief A pass as seen by the scheduler: a declaration plus an opaque
 * execute body. Bodies only ever talk to the backend through the bindings
 * the scheduler configured for them.
 */
type RenderPass interface {
	Declaration() *PassDeclaration
	Execute(backend RendererBackend, frame *FrameInfo, bindings *PassBindings) error
}

/** @brief Load behavior for an attachment at the start of a pass. */
type AttachmentLoadOperation uint32

const (
	ATTACHMENT_LOAD_OPERATION_DONT_CARE AttachmentLoadOperation = 0x0
	ATTACHMENT_LOAD_OPERATION_LOAD      AttachmentLoadOperation = 0x1
	ATTACHMENT_LOAD_OPERATION_CLEAR     AttachmentLoadOperation = 0x2
)

/**
 * @brief Store behavior for an attachment at the end of a pass. On tiled
 * GPUs DONT_CARE keeps the tile out of main memory entirely, so the
 * scheduler only picks STORE when a later pass is known to read the data.
 */
type AttachmentStoreOperation uint32

const (
	ATTACHMENT_STORE_OPERATION_DONT_CARE     AttachmentStoreOperation = 0x0
	ATTACHMENT_STORE_OPERATION_STORE         AttachmentStoreOperation = 0x1
	ATTACHMENT_STORE_OPERATION_STORE_RESOLVE AttachmentStoreOperation = 0x2
)

/**
 * @brief The resource bindings and load/store behavior the scheduler
 * configured for one enqueued pass.
 */
type PassBindings struct {
	Color *TargetHandle
	Depth *TargetHandle
	// Additional normals attachment of a depth-normals pre-pass, nil otherwise.
	Normals *TargetHandle
	// Additional rendering-layers attachment, nil otherwise.
	Layers *TargetHandle
	// Previous frame's colour for temporal accumulation, nil otherwise.
	History *TargetHandle
	// Destination of a copy/blit/resolve style pass, nil otherwise.
	Destination *TargetHandle
	ColorLoad   AttachmentLoadOperation
	ColorStore  AttachmentStoreOperation
	DepthLoad   AttachmentLoadOperation
	DepthStore  AttachmentStoreOperation
	/**
	 * @brief Restricts a deferred-mode pre-pass to geometry that declares
	 * the forward-only capability; standard deferred geometry already wrote
	 * its normals in the gbuffer pass.
	 */
	ForwardOnlyObjects bool
}

/**
 * @brief One entry of the emitted frame plan: a pass bound to its
 * resources, placed at its event. Sequence preserves registration order
 * for stable ties.
 */
type BoundPass struct {
	Pass     RenderPass
	Event    RenderPassEvent
	Sequence int
	Bindings PassBindings
}

/**
 * @brief The ordered, resource-bound pass sequence for one camera, plus the
 * decisions that produced it. Built fully before anything executes.
 */
type FramePlan struct {
	Camera *CameraConfig
	/** @brief The Strategy the camera actually renders with, after fallback. */
	Strategy  RenderingStrategy
	Decisions FeatureDecisionSet
	Passes    []*BoundPass
}

/** @brief Per-frame data handed to executing passes. */
type FrameInfo struct {
	FrameNumber uint64
	DeltaTime   float64
	Camera      *CameraConfig
	/** @brief The Strategy the camera renders with this frame, after fallback. */
	Strategy RenderingStrategy
}
