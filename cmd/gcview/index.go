package main

const indexHTML = `
<!DOCTYPE html>
<html>
  <head>
    <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
    <style type="text/css">
      canvas { border: 1px solid black; float: left; }
      .gcode_list { font-family: monospace; float: left; height: 600px; overflow-y: scroll;
        margin: 0 0 0 16px; padding: 0 8px; list-style: none; }
      .gcode_G { color: #a03000; }
      .gcode_M { color: #700070; }
      .gcode_X { color: #b00000; }
      .gcode_Y { color: #007000; }
      .gcode_A { color: #007000; }
      .gcode_Z { color: #0000b0; }
      .gcode_F { color: #707000; }
      .gcode_comment { color: grey; }
      .gcode_limit { font-style: italic; }
    </style>
    <script src="https://unpkg.com/zdog@1/dist/zdog.dist.js"></script>
  </head>
  <body>
    <canvas class="gcode-view" width="600" height="600"></canvas>
    <ul class="gcode_list">
%s
    </ul>
    <script type="text/javascript">
document.title = %s

const config = {
%s
}

const cmds = [
%s
]
    </script>
    <script type="text/javascript">
let displaySize = 600;

console.log("maxRadius: ", config.maxRadius)

let gcodeView = document.querySelector(".gcode-view")

let illo = new Zdog.Illustration({
  element: gcodeView,
  scale: {x: 1.0, y: -1.0, z: 1.0},
  rotate: {x: 1.1, y: 0, z: -0.3},
  zoom: config.zoom,
});

gcodeView.onwheel = function(event) {
  illo.zoom -= (event.deltaY * 0.001 * config.zoom)
  if (illo.zoom < config.zoom / 10) {
    illo.zoom = config.zoom / 10
  }
  console.log("zoom: ", illo.zoom)
  animate()
}

let dragStartRX, dragStartRZ;
let isDragging = false;

new Zdog.Dragger({
  startElement: gcodeView,
  onDragStart: function() {
    dragStartRX = illo.rotate.x;
    dragStartRZ = illo.rotate.z;
    isDragging = true;
    animate();
  },
  onDragMove: function( pointer, moveX, moveY ) {
    illo.rotate.x = dragStartRX - ( moveY / displaySize * Zdog.TAU );
    illo.rotate.z = dragStartRZ - ( moveX / displaySize * Zdog.TAU );
  },
  onDragEnd: function () {
    isDragging = false;
  },
});

// Worktable
let workspace = new Zdog.Anchor({
  addTo: illo,
})

new Zdog.Ellipse({
  addTo: workspace,
  diameter: config.maxRadius * 2,
  stroke: 0.5 / config.zoom,
  color: 'grey',
})

// Axes
new Zdog.Shape({
  addTo: workspace,
  stroke: 1 / config.zoom,
  color: 'red',
  path: [
    {x: 0, y: 0, z: 0},
    {x: config.axisLength, y: 0, z: 0},
  ],
})

new Zdog.Shape({
  addTo: workspace,
  stroke: 1 / config.zoom,
  color: 'green',
  path: [
    {x: 0, y: 0, z: 0},
    {x: 0, y: config.axisLength, z: 0},
  ],
})

new Zdog.Shape({
  addTo: workspace,
  stroke: 1 / config.zoom,
  color: 'blue',
  path: [
    {x: 0, y: 0, z: 0},
    {x: 0, y: 0, z: config.axisLength},
  ],
})

let curPt = {x: 0, y: 0, z: 0}

function rapidTo(pt) {
  new Zdog.Shape({
    addTo: workspace,
    stroke: 1 / config.zoom,
    color: 'red',
    path: [curPt, pt],
  })
  curPt = pt
}

function linearTo(pt) {
  new Zdog.Shape({
    addTo: workspace,
    stroke: 1 / config.zoom,
    color: 'green',
    path: [curPt, pt],
  })
  curPt = pt
}

for (cmd of cmds) {
  if (cmd.rapidTo !== undefined) {
    rapidTo(cmd.rapidTo)
  } else if (cmd.linearTo !== undefined) {
    linearTo(cmd.linearTo)
  }
}

function animate() {
  illo.updateRenderGraph()
  if (isDragging) {
    requestAnimationFrame(animate)
  }
}
animate();
    </script>
 </body>
</html>
`
